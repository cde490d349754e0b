package rowio

import (
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/invertedv/cidcheck/ciderrors"
)

// decodedReader wraps r with a transform.Reader that decodes bytes from the
// named encoding into UTF-8. Grounded on the same golang.org/x/text/encoding
// resolution used by dataformat.Format.Validate to check an encoding name is
// resolvable.
func decodedReader(name string, r io.Reader) (io.Reader, error) {
	enc, err := resolveEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

func encodedWriter(name string, w io.Writer) (io.Writer, error) {
	enc, err := resolveEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return w, nil
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}

func resolveEncoding(name string) (encoding.Encoding, error) {
	switch lowered(name) {
	case "utf-8", "utf8", "":
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, ciderrors.DataFormatErr(nil, "encoding %q is not resolvable", name)
	}
	return enc, nil
}

func lowered(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
