package queryengine

import (
	"bufio"
	"fmt"
	"io"
)

// WritePage renders page in the line-oriented TOTAL/DOC format:
//
//	TOTAL\t<count>
//	DOC\t<doc_id>\t<title>\t<url>
//
// one DOC line per entry in page.DocIDs, in order.
func (e *Engine) WritePage(w io.Writer, page Page) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "TOTAL\t%d\n", page.Total); err != nil {
		return err
	}
	for _, docID := range page.DocIDs {
		meta, _ := e.Meta(docID)
		if _, err := fmt.Fprintf(bw, "DOC\t%d\t%s\t%s\n", docID, meta.Title, meta.URL); err != nil {
			return err
		}
	}
	return bw.Flush()
}
