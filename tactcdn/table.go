package tactcdn

import "strings"

// Table is a parsed pipe-delimited patch-service response: the CDN table or
// the version table, each row keyed by its header-declared columns.
type Table struct {
	headers []string
	rows    []map[string]string
}

// Rows returns the parsed rows in file order.
func (t *Table) Rows() []map[string]string {
	return t.rows
}

// parseTable implements the patch service's pipe-delimited format: split on
// "\r\n" or "\n"; drop empty and '#'-prefixed lines; the first remaining
// line is the header ("Name!Type:Width" columns, type/width stripped);
// subsequent lines are split on '|', trimmed, and zipped with headers. Rows
// with fewer fields than headers are skipped.
func parseTable(body string) *Table {
	raw := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")

	var lines []string
	for _, l := range raw {
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		lines = append(lines, l)
	}
	if len(lines) == 0 {
		return &Table{}
	}

	headerFields := strings.Split(lines[0], "|")
	headers := make([]string, len(headerFields))
	for i, h := range headerFields {
		if idx := strings.IndexByte(h, '!'); idx >= 0 {
			h = h[:idx]
		}
		headers[i] = strings.TrimSpace(h)
	}

	t := &Table{headers: headers}
	for _, line := range lines[1:] {
		fields := strings.Split(line, "|")
		if len(fields) < len(headers) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			row[h] = strings.TrimSpace(fields[i])
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// HostsOf returns the space-separated Hosts column of a CDN table row,
// falling back to Servers, split into individual host strings.
func HostsOf(row map[string]string) []string {
	v, ok := row["Hosts"]
	if !ok || v == "" {
		v = row["Servers"]
	}
	return strings.Fields(v)
}
