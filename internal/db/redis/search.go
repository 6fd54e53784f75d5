package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/tardis-search/internal/db"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/filter"
)

// SearchMulti pipelines one FT.SEARCH per query through DoMulti.
// The first failing query aborts the whole batch.
func (s *Store) SearchMulti(ctx context.Context, qs []*db.TextQuery) ([]*db.SearchResult, error) {
	if len(qs) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(qs))
	for i, q := range qs {
		args, err := buildSearchArgs(q)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		cmds[i] = s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]*db.SearchResult, len(results))

	for i, res := range results {
		raw, err := res.ToArray()
		if err != nil {
			return nil, searchError(qs[i].IndexName, err)
		}
		sr, err := parseScoredResult(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", qs[i].IndexName, err)
		}
		out[i] = sr
	}

	return out, nil
}

func buildSearchArgs(q *db.TextQuery) ([]string, error) {
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if strings.TrimSpace(q.Text) != "" && len(q.Fields) == 0 {
		return nil, errors.New("at least one text field is required")
	}
	if q.Limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	return []string{
		q.IndexName, buildQueryString(q),
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(q.Limit),
		"DIALECT", "2",
	}, nil
}

// buildQueryString renders "@f1|f2:(t1|t2) <filters>".
// Terms are OR-ed so any matching term scores the document.
// Blank text without filters matches every document.
func buildQueryString(q *db.TextQuery) string {
	var parts []string
	if strings.TrimSpace(q.Text) != "" {
		parts = append(parts, fmt.Sprintf("@%s:(%s)", strings.Join(q.Fields, "|"), anyTerm(q.Text)))
	}
	if filterStr := buildFilter(q.Filters); filterStr != "" {
		parts = append(parts, filterStr)
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func searchError(index string, err error) error {
	if isUnknownIndex(err) {
		return &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%s: %w", index, db.ErrIndexNotFound)}
	}
	return &db.Error{Op: db.OpSearch, Err: err}
}

// --- Result parsing ---

func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilter renders every condition of expr, space-separated (AND).
func buildFilter(expr filter.Expression) string {
	parts := make([]string, 0, len(expr.Must()))
	for _, cond := range expr.Must() {
		if c := buildCondition(cond); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

func buildCondition(cond filter.Condition) string {
	switch cond.Kind() {
	case filter.KindText:
		return fmt.Sprintf("@%s:(%s)", cond.Key(), anyTerm(cond.Text()))
	case filter.KindRange:
		return buildNumericFilter(cond.Key(), *cond.Range())
	}
	return ""
}

// buildNumericFilter renders the half-open range as "@key:[from (to]".
func buildNumericFilter(key string, r filter.Range) string {
	return fmt.Sprintf("@%s:[%s (%s]", key, formatNumber(r.From()), formatNumber(r.To()))
}

// formatNumber avoids exponent notation for epoch-second bounds.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// --- Query helpers ---

// anyTerm escapes each whitespace-separated term and joins them with "|".
func anyTerm(text string) string {
	terms := strings.Fields(text)
	for i, t := range terms {
		terms[i] = escapeQuery(t)
	}
	return strings.Join(terms, "|")
}

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
