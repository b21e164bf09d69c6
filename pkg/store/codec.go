package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifica a serialização do documento seed.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath deduz o formato pela extensão; o padrão é JSON.
func FormatFromPath(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode converte os bytes do seed em Document.
// Números JSON são preservados como json.Number.
func Decode(data []byte, format Format) (Document, error) {
	if format == FormatYAML {
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("erro parse YAML do documento: %w", err)
		}
		normalized, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("erro ao normalizar YAML: %w", err)
		}
		data = normalized
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("documento inválido (esperado objeto de coleções): %w", err)
	}
	if doc == nil {
		doc = make(Document)
	}
	return doc, nil
}

// Encode serializa o documento com indentação de dois espaços, como o db.json original.
func Encode(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
