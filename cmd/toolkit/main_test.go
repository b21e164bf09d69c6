package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/raywall/procurement-mock/pkg/engine"
	"github.com/raywall/procurement-mock/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, seed string) string {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(source, []byte(seed), 0o644))

	cfgPath := filepath.Join(dir, "config.yaml")
	content := "service:\n  name: cli-test\n  logging: {enabled: false}\nstore:\n  source: \"" + source + "\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath
}

func TestRunValidate_HappyPath(t *testing.T) {
	cfgPath := writeConfig(t, `{
  "vendors": [{"id": 5, "businessEntityId": 5}],
  "purchase-orders": [{"id": 10, "purchaseOrderId": 10, "vendorId": 5}]
}`)

	var out bytes.Buffer
	require.NoError(t, runValidate(context.Background(), &out, cfgPath, ""))
	assert.Contains(t, out.String(), "✅")
}

func TestRunValidate_DuplicateIDs(t *testing.T) {
	cfgPath := writeConfig(t, `{"vendors": [{"id": 1}, {"id": "1"}]}`)

	var out bytes.Buffer
	err := runValidate(context.Background(), &out, cfgPath, "")
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out.String(), "vendors: id duplicado 1")
}

func TestRunValidate_WarningsDoNotFail(t *testing.T) {
	cfgPath := writeConfig(t, `{"purchase-orders": [{"id": 10, "purchaseOrderId": 10, "vendorId": 5}]}`)

	var out bytes.Buffer
	require.NoError(t, runValidate(context.Background(), &out, cfgPath, ""))
	assert.Contains(t, out.String(), "coleção vendors ausente")
}

type stubLoader struct {
	source string
}

func (s *stubLoader) Load(_ context.Context, source string) (store.Document, error) {
	s.source = source
	return nil, errors.New("bucket inexistente")
}

func TestRunValidate_SourceOverride(t *testing.T) {
	cfgPath := writeConfig(t, `{}`)

	stub := &stubLoader{}
	original := newLoader
	newLoader = func(string) engine.DocumentLoader { return stub }
	defer func() { newLoader = original }()

	var out bytes.Buffer
	err := runValidate(context.Background(), &out, cfgPath, "s3://mock-data/db.json")
	require.Error(t, err)
	assert.Equal(t, "s3://mock-data/db.json", stub.source)
	assert.Contains(t, out.String(), "bucket inexistente")
}

func TestRunValidate_BadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("service:\n  unknown_key: 1\n"), 0o644))

	var out bytes.Buffer
	assert.Error(t, runValidate(context.Background(), &out, cfgPath, ""))
	assert.Contains(t, out.String(), "❌")
}
