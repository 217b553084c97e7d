package corpus

import "strings"

// Split cuts the flat corpus text into ordered chunks, each at most maxBytes,
// without splitting a blank-line-separated block. Greedy packing: a block
// that would push the current chunk over budget closes it. A single block
// larger than maxBytes is emitted alone as an oversized chunk; it is never
// split. The concatenation of the returned chunks reproduces the input byte
// for byte.
func Split(text string, maxBytes int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return nil
	}

	// SplitAfter keeps the separator attached to each block, which is what
	// makes the round-trip exact.
	blocks := strings.SplitAfter(text, "\n\n")

	var chunks []string
	var cur strings.Builder
	for _, block := range blocks {
		if cur.Len() > 0 && cur.Len()+len(block) > maxBytes {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(block)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
