package domain

import (
	"strings"
	"time"
)

type TypeFilter string

const (
	TypeAll          TypeFilter = "all"
	TypeFiatToCrypto TypeFilter = "fiat_to_crypto"
	TypeCryptoToFiat TypeFilter = "crypto_to_fiat"
)

type DatePreset string

const (
	PresetToday     DatePreset = "today"
	PresetThisWeek  DatePreset = "this_week"
	PresetThisMonth DatePreset = "this_month"
	PresetRange     DatePreset = "range"
)

// FilterValue é o estado do filtro da listagem de transações.
// From/To só valem quando DatePreset == range.
type FilterValue struct {
	Type       TypeFilter `json:"type"`
	DatePreset DatePreset `json:"date_preset"`
	From       *string    `json:"from,omitempty"`
	To         *string    `json:"to,omitempty"`
}

func DefaultFilter() FilterValue {
	return FilterValue{Type: TypeAll, DatePreset: PresetThisMonth}
}

func (f FilterValue) WithType(t TypeFilter) FilterValue {
	f.Type = t
	return f
}

// WithDatePreset devolve o próximo estado. Sair de range limpa os limites.
func (f FilterValue) WithDatePreset(p DatePreset) FilterValue {
	f.DatePreset = p
	return f.Normalize()
}

// WithRange muda para range com os limites dados (nil = sem limite).
func (f FilterValue) WithRange(from, to *string) FilterValue {
	f.DatePreset = PresetRange
	f.From = from
	f.To = to
	return f
}

// Normalize garante que um estado persistido nunca tenha limites fora de range.
func (f FilterValue) Normalize() FilterValue {
	if f.DatePreset != PresetRange {
		f.From = nil
		f.To = nil
	}
	return f
}

// Match aplica os dois predicados. Datas inválidas resultam em "não casa", nunca em erro.
func (f FilterValue) Match(tx Transaction, now time.Time) bool {
	return f.matchType(tx) && f.matchDate(tx, now)
}

// Apply filtra a coleção preservando a ordem de entrada.
func Apply(f FilterValue, txs []Transaction, now time.Time) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Match(tx, now) {
			out = append(out, tx)
		}
	}
	return out
}

func (f FilterValue) matchType(tx Transaction) bool {
	if f.Type == "" || f.Type == TypeAll {
		return true
	}
	return string(tx.Direction) == string(f.Type)
}

func (f FilterValue) matchDate(tx Transaction, now time.Time) bool {
	if tx.CreatedAt.IsZero() {
		return false
	}
	loc := now.Location()
	created := startOfDay(tx.CreatedAt.In(loc))
	today := startOfDay(now)

	switch f.DatePreset {
	case PresetToday:
		return created.Equal(today)
	case PresetThisWeek:
		// Semana começa na segunda-feira.
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		end := start.AddDate(0, 0, 7)
		return !created.Before(start) && created.Before(end)
	case PresetThisMonth:
		return created.Year() == today.Year() && created.Month() == today.Month()
	case PresetRange:
		if f.From != nil {
			from, ok := parseDay(*f.From, loc)
			if !ok || created.Before(from) {
				return false
			}
		}
		if f.To != nil {
			to, ok := parseDay(*f.To, loc)
			if !ok || created.After(to) {
				return false
			}
		}
		return true
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// parseDay aceita YYYY-MM-DD ou RFC3339 e devolve o início do dia em loc.
func parseDay(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return startOfDay(t.In(loc)), true
	}
	return time.Time{}, false
}
