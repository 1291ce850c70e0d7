package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f3rmion/tagcalc/internal/tag"
)

type stubSource map[string][]tag.Item

func (s stubSource) Lookup(_ context.Context, q string) ([]tag.Item, error) {
	if items, ok := s[q]; ok {
		return items, nil
	}
	return nil, errors.New("offline")
}

func TestParseTags(t *testing.T) {
	var looked []string
	resolve := func(_ context.Context, name string) (tag.Item, error) {
		looked = append(looked, name)
		return tag.Item{Name: name, Value: 7}, nil
	}

	items, err := parseTags(context.Background(), []string{"2", "+", "ten=10", "seven", "^", "1e3"}, resolve)
	require.NoError(t, err)

	assert.Equal(t, []tag.Item{
		{Name: "2", Value: 2},
		tag.Symbol("+"),
		{Name: "ten", Value: 10},
		{Name: "seven", Value: 7},
		tag.Symbol("^"),
		{Name: "1e3", Value: 1000},
	}, items)
	assert.Equal(t, []string{"seven"}, looked)
}

func TestParseTagsErrors(t *testing.T) {
	never := func(context.Context, string) (tag.Item, error) {
		t.Fatal("resolve must not be called")
		return tag.Item{}, nil
	}

	_, err := parseTags(context.Background(), []string{"x=abc"}, never)
	assert.ErrorContains(t, err, "is not a number")

	_, err = parseTags(context.Background(), []string{" "}, never)
	assert.ErrorContains(t, err, "empty tag")
}

func TestResolveTagPrefersExactName(t *testing.T) {
	src := stubSource{
		"five": {{Name: "fifty-five", Value: 55}, {Name: "Five", Value: 5}},
		"fi":   {{Name: "fifty", Value: 50}},
		"none": {},
	}

	it, err := resolveTag(context.Background(), src, "five")
	require.NoError(t, err)
	assert.Equal(t, 5.0, it.Value)

	it, err = resolveTag(context.Background(), src, "fi")
	require.NoError(t, err)
	assert.Equal(t, "fifty", it.Name)

	_, err = resolveTag(context.Background(), src, "none")
	assert.ErrorContains(t, err, `no tag matches "none"`)

	_, err = resolveTag(context.Background(), src, "down")
	assert.ErrorContains(t, err, "offline")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		_ = evalCmd.Flags().Set("json", "false")
		_ = evalCmd.Flags().Set("explain", "false")
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestEvalCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "--config", dir, "eval", "5", "+", "3")
	require.NoError(t, err)
	assert.Equal(t, "8\n", out)

	out, err = execute(t, "--config", dir, "eval", "2", "3")
	require.NoError(t, err)
	assert.Equal(t, "23\n", out)

	out, err = execute(t, "--config", dir, "eval", "10", "/", "0")
	require.NoError(t, err)
	assert.Equal(t, "\n", out)

	out, err = execute(t, "--config", dir, "eval", "2", "*", "-3")
	require.NoError(t, err)
	assert.Equal(t, "-6\n", out)

	// "5 --3" is not valid arithmetic, so the value falls back to 0.
	out, err = execute(t, "--config", dir, "eval", "5", "-", "-3")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)

	out, err = execute(t, "--config", dir, "eval", "--json", "2", "*")
	require.NoError(t, err)
	assert.JSONEq(t, `{"expression":"2 ","value":2,"display":"2","recovered":true,"failed":false}`, out)
}

func TestCatalogCommands(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "items.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`items:
  - id: a
    name: apple
    value: 3
  - id: b
    name: banana
    value: 4
`), 0644))

	out, err := execute(t, "--config", dir, "catalog", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 items")

	out, err = execute(t, "--config", dir, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "apple")
	assert.Contains(t, out, "banana")

	out, err = execute(t, "--config", dir, "--source", "local", "eval", "apple", "*", "banana")
	require.NoError(t, err)
	assert.Equal(t, "12\n", strings.TrimLeft(out, " "))

	out, err = execute(t, "--config", dir, "catalog", "delete", "a", "zz")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted a")
	assert.Contains(t, out, "No item with id zz")
}
