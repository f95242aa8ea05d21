package syllabus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Theme is one entry of the clustering vocabulary. Themes are matched in
// slice order and the first keyword hit wins, so the table order is part of
// the clustering contract.
type Theme struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Order    float64  `yaml:"order"`
}

// DefaultThemes returns the built-in theme vocabulary. The table is static
// configuration, not learned; swap it via LoadThemes to retarget the domain
// vocabulary without code changes.
func DefaultThemes() []Theme {
	return []Theme{
		{Name: "Fundamentos", Order: 1, Keywords: []string{
			"fundamento", "básico", "basico", "introdução", "introducao",
			"conceito", "definição", "definicao", "o que é", "história", "historia",
			"origem", "princípio", "principio",
		}},
		{Name: "Teoria e Conceitos", Order: 2, Keywords: []string{
			"teoria", "teorema", "lei", "modelo", "estrutura", "propriedade",
			"classificação", "classificacao", "tipo", "característica", "caracteristica",
		}},
		{Name: "Métodos e Técnicas", Order: 3, Keywords: []string{
			"método", "metodo", "técnica", "tecnica", "cálculo", "calculo",
			"fórmula", "formula", "procedimento", "resolução", "resolucao",
			"derivada", "integra", "limite", "equação", "equacao", "função", "funcao",
		}},
		{Name: "Aplicações Práticas", Order: 4, Keywords: []string{
			"aplicação", "aplicacao", "prática", "pratica", "exemplo", "exercício",
			"exercicio", "caso", "uso", "problema", "projeto", "implementação",
			"implementacao",
		}},
		{Name: "Tópicos Avançados", Order: 5, Keywords: []string{
			"avançado", "avancado", "aprofundamento", "extensão", "extensao",
			"otimização", "otimizacao", "análise", "analise", "pesquisa", "tendência",
			"tendencia",
		}},
	}
}

type themesFile struct {
	Themes []Theme `yaml:"themes"`
}

// LoadThemes reads a theme table from a YAML file. Entries keep file order;
// a missing Order falls back to the 1-based position so downstream sorting
// stays deterministic.
func LoadThemes(path string) ([]Theme, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read themes file: %w", err)
	}
	var f themesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse themes file: %w", err)
	}
	if len(f.Themes) == 0 {
		return nil, fmt.Errorf("themes file %q defines no themes", path)
	}
	for i := range f.Themes {
		if f.Themes[i].Order == 0 {
			f.Themes[i].Order = float64(i + 1)
		}
	}
	return f.Themes, nil
}
