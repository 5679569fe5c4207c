package tailbound

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
)

// UniformEnvelopeDivisor is the constant in the uniform major-arc envelope
// E = N/(160·L). The 160 comes from the explicit envelope derived in the
// underlying paper (Appendix C); it is a fixed constant of the verification,
// not a tunable.
const UniformEnvelopeDivisor = 160.0

// EnvelopeTrivial is the unconditional worst-case envelope E = N·L + N.
func EnvelopeTrivial(n, l float64) float64 {
	return n*l + n
}

// EnvelopeUniform is the sharpened envelope E = N/(160·L).
func EnvelopeUniform(n, l float64) float64 {
	return n / (UniformEnvelopeDivisor * l)
}

// EnvelopeModel names one of the closed-form envelopes.
type EnvelopeModel string

const (
	ModelTrivial EnvelopeModel = "trivial"
	ModelUniform EnvelopeModel = "uniform"
)

// ParseEnvelopeModel validates a model name from the CLI boundary.
func ParseEnvelopeModel(s string) (EnvelopeModel, error) {
	switch m := EnvelopeModel(s); m {
	case ModelTrivial, ModelUniform:
		return m, nil
	}
	return "", fmt.Errorf("unknown envelope model %q (want trivial or uniform)", s)
}

// Eval computes the envelope at scale n with l = ln n.
func (m EnvelopeModel) Eval(n, l float64) (float64, error) {
	switch m {
	case ModelTrivial:
		return EnvelopeTrivial(n, l), nil
	case ModelUniform:
		return EnvelopeUniform(n, l), nil
	}
	return 0, fmt.Errorf("unknown envelope model %q", m)
}

// PerQForm tags which closed-form expression a per-q override row selects.
type PerQForm string

const (
	FormCNOverLog PerQForm = "cNoverlog" // E = c1·N/L
	FormCNLog     PerQForm = "cNlog"     // E = c1·N·L
	FormAffine    PerQForm = "affine"    // E = c1·N·L + c2·N
)

// PerQEntry carries externally supplied envelope constants for one modulus q.
type PerQEntry struct {
	Q    int
	Form PerQForm
	C1   float64
	C2   float64
}

// Envelope evaluates the entry's closed form at scale n with l = ln n.
// An unrecognized form tag falls back to c1·N/L, matching the table format's
// historical default.
func (e PerQEntry) Envelope(n, l float64) float64 {
	switch e.Form {
	case FormCNLog:
		return e.C1 * n * l
	case FormAffine:
		return e.C1*n*l + e.C2*n
	default:
		return e.C1 * n / l
	}
}

// PerQTable is an immutable per-q override table, loaded once and queried by
// modulus. A lookup miss is not an error: the evaluator substitutes a
// fallback envelope and counts the miss.
type PerQTable struct {
	entries map[int]PerQEntry
	skipped int
}

// Lookup returns the entry for q, if one was loaded.
func (t *PerQTable) Lookup(q int) (PerQEntry, bool) {
	if t == nil {
		return PerQEntry{}, false
	}
	e, ok := t.entries[q]
	return e, ok
}

// Len returns the number of loaded rows.
func (t *PerQTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Skipped returns how many rows were dropped as malformed during loading.
func (t *PerQTable) Skipped() int {
	if t == nil {
		return 0
	}
	return t.skipped
}

// LoadPerQTable reads a per-q constants table from a CSV file with header
// columns q, form, c1, c2. An unreadable file is an error (the caller decides
// whether an absent table simply disables the per-q variant); a malformed
// row is skipped with a warning and counted, never fatal — one consistent
// tolerance policy for both external inputs.
func LoadPerQTable(path string, logger *slog.Logger) (*PerQTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("per-q table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("per-q table %s: reading header: %w", path, err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"q", "form", "c1", "c2"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("per-q table %s: missing column %q", path, name)
		}
	}

	table := &PerQTable{entries: make(map[int]PerQEntry)}
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("per-q table: skipping unreadable row", "path", path, "line", line, "err", err)
			table.skipped++
			continue
		}
		entry, err := parsePerQRecord(record, col)
		if err != nil {
			logger.Warn("per-q table: skipping malformed row", "path", path, "line", line, "err", err)
			table.skipped++
			continue
		}
		table.entries[entry.Q] = entry
	}

	return table, nil
}

func parsePerQRecord(record []string, col map[string]int) (PerQEntry, error) {
	field := func(name string) (string, error) {
		i := col[name]
		if i >= len(record) {
			return "", fmt.Errorf("missing field %q", name)
		}
		return record[i], nil
	}

	qs, err := field("q")
	if err != nil {
		return PerQEntry{}, err
	}
	q, err := strconv.Atoi(qs)
	if err != nil {
		return PerQEntry{}, fmt.Errorf("field q: %w", err)
	}

	form, err := field("form")
	if err != nil {
		return PerQEntry{}, err
	}

	c1s, err := field("c1")
	if err != nil {
		return PerQEntry{}, err
	}
	c1, err := strconv.ParseFloat(c1s, 64)
	if err != nil {
		return PerQEntry{}, fmt.Errorf("field c1: %w", err)
	}

	c2s, err := field("c2")
	if err != nil {
		return PerQEntry{}, err
	}
	c2, err := strconv.ParseFloat(c2s, 64)
	if err != nil {
		return PerQEntry{}, fmt.Errorf("field c2: %w", err)
	}

	return PerQEntry{Q: q, Form: PerQForm(form), C1: c1, C2: c2}, nil
}
