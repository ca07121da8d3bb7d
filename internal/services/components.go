/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "os"
    "strings"

    "github.com/mvidal/orgpulse/internal/domain"
    "github.com/rs/zerolog"
    "gopkg.in/yaml.v3"
)

// acronyms stay uppercase in formatted component names
var acronyms = map[string]struct{}{
    "api": {}, "ui": {}, "cli": {}, "db": {}, "sdk": {}, "etl": {}, "ci": {},
}

// RepoProduct is the component a repository rolls up into.
type RepoProduct struct {
    Name string
    Info domain.Product
}

// loadProductsConfig reads the components YAML. Absence is not an error:
// grouping silently degrades to ungrouped mode.
func loadProductsConfig(path string, log zerolog.Logger) *domain.ProductsConfig {
    data, err := os.ReadFile(path)
    if err != nil {
        log.Warn().Str("path", path).Msg("products config not found - grouping by component not available")
        return nil
    }
    var cfg domain.ProductsConfig
    if err := yaml.Unmarshal(data, &cfg); err != nil {
        log.Warn().Err(err).Str("path", path).Msg("products config invalid - grouping by component not available")
        return nil
    }
    if len(cfg.Products) == 0 {
        log.Warn().Str("path", path).Msg("products config has no products")
        return nil
    }
    return &cfg
}

// buildRepoProductMap flattens the config into repo -> product. Products
// flagged ignore are skipped; a repository listed under two products keeps
// the last declaration.
func buildRepoProductMap(cfg *domain.ProductsConfig) map[string]RepoProduct {
    out := map[string]RepoProduct{}
    if cfg == nil { return out }
    for name, info := range cfg.Products {
        if info.Ignore { continue }
        for _, repo := range info.Repositories {
            out[repo] = RepoProduct{Name: name, Info: info}
        }
    }
    return out
}

// formatComponentName converts a hyphenated component name to title case,
// keeping known acronyms uppercase.
func formatComponentName(name string) string {
    words := strings.Split(strings.ReplaceAll(name, "-", " "), " ")
    out := make([]string, 0, len(words))
    for _, w := range words {
        if w == "" { continue }
        if _, ok := acronyms[strings.ToLower(w)]; ok {
            out = append(out, strings.ToUpper(w))
            continue
        }
        out = append(out, strings.ToUpper(w[:1])+w[1:])
    }
    return strings.Join(out, " ")
}
