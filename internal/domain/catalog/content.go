package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
)

// ErrNotText is returned for simulation files that are not UTF-8 text
var ErrNotText = errors.New("simulation file is not UTF-8 text")

// checkText rejects binary content and text in a legacy encoding before
// any decoder sees it
func checkText(data []byte) error {
	if mtype := mimetype.Detect(data); !isText(mtype) {
		return fmt.Errorf("%w: detected %s", ErrNotText, mtype.String())
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("%w: looks like %s", ErrNotText, detectCharset(data))
	}
	return nil
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// detectCharset names the most likely encoding of data
func detectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "unknown encoding"
	}
	return strings.ToLower(result.Charset)
}
