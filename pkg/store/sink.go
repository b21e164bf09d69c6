package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink recebe o documento completo após cada mutação.
type Sink interface {
	Write(doc Document) error
}

// FileSink grava o documento em disco trocando o arquivo de forma atômica.
type FileSink struct {
	Path string
}

// NewFileSink cria um sink para o caminho informado.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

func (f *FileSink) Write(doc Document) error {
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("erro ao serializar documento: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".db-*.json")
	if err != nil {
		return fmt.Errorf("erro ao criar arquivo temporário: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("erro ao gravar documento: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}
