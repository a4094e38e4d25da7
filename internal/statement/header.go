// Package statement reads bank statement exports into raw rows.
package statement

import "bytes"

// HeaderWindow is the number of leading lines searched for the blank line
// separating a bank's preamble from the CSV header.
const HeaderWindow = 16

// LocateHeader strips the preamble in front of the CSV header. It searches
// the first HeaderWindow lines backwards for a blank line; everything up to
// and including that line is dropped. The returned offset is the number of
// dropped lines plus one, so a line at 1-based position p of the trimmed
// text sits at line offset-1+p of the original file. Without a blank line
// in the window the lines are returned untouched with an offset of one.
func LocateHeader(lines [][]byte) ([][]byte, int) {
	last := min(HeaderWindow, len(lines)) - 1
	for i := last; i >= 0; i-- {
		if isBlank(lines[i]) {
			return lines[i+1:], i + 2
		}
	}
	return lines, 1
}

func isBlank(line []byte) bool {
	return len(trimEOL(line)) == 0
}

func trimEOL(line []byte) []byte {
	return bytes.TrimRight(line, "\r\n")
}

// splitLines splits data into physical lines, keeping line terminators.
func splitLines(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}
	lines := bytes.SplitAfter(data, []byte("\n"))
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}
