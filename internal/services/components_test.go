package services

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/mvidal/orgpulse/internal/domain"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const productsYAML = `products:
  registry:
    description: metadata registry
    repositories:
      - registry-api
      - registry-loader
  legacy-tools:
    ignore: true
    repositories:
      - old-tool
  search-ui:
    repositories:
      - search-ui
`

func TestLoadProductsConfig(t *testing.T) {
    path := filepath.Join(t.TempDir(), "products.yaml")
    require.NoError(t, os.WriteFile(path, []byte(productsYAML), 0o644))

    cfg := loadProductsConfig(path, zerolog.Nop())
    require.NotNil(t, cfg)
    assert.Len(t, cfg.Products, 3)
    assert.True(t, cfg.Products["legacy-tools"].Ignore)
}

func TestLoadProductsConfig_MissingFileDegrades(t *testing.T) {
    assert.Nil(t, loadProductsConfig("/nonexistent/products.yaml", zerolog.Nop()))
}

func TestLoadProductsConfig_InvalidYAMLDegrades(t *testing.T) {
    path := filepath.Join(t.TempDir(), "products.yaml")
    require.NoError(t, os.WriteFile(path, []byte(":\n  - not yaml"), 0o644))
    assert.Nil(t, loadProductsConfig(path, zerolog.Nop()))
}

func TestBuildRepoProductMap(t *testing.T) {
    cfg := &domain.ProductsConfig{Products: map[string]domain.Product{
        "registry":     {Repositories: []string{"registry-api", "registry-loader"}},
        "legacy-tools": {Ignore: true, Repositories: []string{"old-tool"}},
    }}
    m := buildRepoProductMap(cfg)

    assert.Equal(t, "registry", m["registry-api"].Name)
    assert.Equal(t, "registry", m["registry-loader"].Name)
    _, ok := m["old-tool"]
    assert.False(t, ok, "ignored products must not map")

    assert.Empty(t, buildRepoProductMap(nil))
}

func TestFormatComponentName(t *testing.T) {
    assert.Equal(t, "Registry API", formatComponentName("registry-api"))
    assert.Equal(t, "Search UI", formatComponentName("search-ui"))
    assert.Equal(t, "Data Tools", formatComponentName("data-tools"))
    assert.Equal(t, "CLI", formatComponentName("cli"))
}
