package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `{"categories":[{
  "id": "class-c",
  "name": "Class C Motorhome",
  "includedItems": ["Kitchen kit", "Bedding"],
  "addOns": [{"name": "Bike rack", "price": "$10/night"}]
}]}`

func setupEnv(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))

	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("POLICY_FILE", "")
	t.Setenv("TRANSCRIPT_DB", "")
	t.Setenv("CATALOG_FILE", path)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAskAnswersFromCatalog(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "ask", "--unit", "class-c", "what", "is", "included?")
	require.NoError(t, err)
	assert.Contains(t, out, "- Kitchen kit")
}

func TestAskWithoutModelFails(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "ask", "my", "fridge", "is", "warm")
	assert.Error(t, err)
}

func TestCatalogList(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "class-c")
	assert.Contains(t, out, "Class C Motorhome")
}

func TestCatalogShowJSON(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "--json", "catalog", "class-c")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Class C Motorhome"`)

	_, err = run(t, "catalog", "yacht")
	assert.Error(t, err)
}

func TestPolicyPrintsYAML(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "policy")
	require.NoError(t, err)
	assert.Contains(t, out, "brand: Island RV Rentals")
	assert.Contains(t, out, "bookingUrl: https://islandrv.ca/booknow/")
}

func TestPolicyValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("brand: Island RV Rentals\n"), 0o600))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("bookingUrl: ftp://example.com\n"), 0o600))

	out, err := run(t, "policy", "--validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	_, err = run(t, "policy", "--validate", bad)
	assert.Error(t, err)
}
