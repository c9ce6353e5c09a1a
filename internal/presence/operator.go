// Package presence mostra quais operadores estão com o dashboard aberto.
// É só cosmético: nenhuma regra de negócio depende daqui.
package presence

import (
	"math/rand"

	"github.com/google/uuid"
)

const (
	// MaxVisible é quantos avatares o dashboard mostra.
	MaxVisible = 8
	// PlaceholderCount é quantos avatares genéricos aparecem quando ninguém está online.
	PlaceholderCount = 3

	anonymousInitials = "OP"
)

type Operator struct {
	ID          string `json:"id"`
	Initials    string `json:"initials"`
	Hue         int    `json:"hue"`
	Placeholder bool   `json:"placeholder,omitempty"`
	Gradient    string `json:"gradient,omitempty"`
}

// NewAnonymousOperator cria o registro que cada cliente anuncia ao entrar.
func NewAnonymousOperator() Operator {
	return Operator{
		ID:       uuid.NewString(),
		Initials: anonymousInitials,
		Hue:      rand.Intn(360),
	}
}

var placeholderGradients = [PlaceholderCount]string{
	"from-sky-400 to-indigo-500",
	"from-emerald-400 to-teal-500",
	"from-amber-400 to-rose-500",
}

func placeholders() []Operator {
	out := make([]Operator, 0, PlaceholderCount)
	for i, g := range placeholderGradients {
		out = append(out, Operator{
			ID:          "placeholder-" + string(rune('1'+i)),
			Placeholder: true,
			Gradient:    g,
		})
	}
	return out
}
