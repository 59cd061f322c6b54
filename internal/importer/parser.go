package importer

import "strings"

// Parse splits raw delimited text into a header row and data rows. Cells are
// split on the single fixed delimiter; there is no quoting or escaping
// support, so a delimiter inside a value is not reconstructable. Rows whose
// cell count differs from the header are returned as-is: callers must treat
// missing cells as absent.
func Parse(raw, delimiter string) (headers []string, rows [][]string) {
	lines := splitLines(raw)
	if len(lines) == 0 {
		return nil, nil
	}

	headers = strings.Split(lines[0], delimiter)
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows = make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, strings.Split(line, delimiter))
	}
	return headers, rows
}

// splitLines splits on \n or \r\n and drops blank lines
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
