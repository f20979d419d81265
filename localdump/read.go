package localdump

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var frontMatterDelimiter = []byte("---\n")

// ReadHeader parses the front matter of a previously exported file.  A file without front
// matter yields ok == false and no error.
func ReadHeader(mdPath string) (header Header, ok bool, err error) {
	source, err := os.ReadFile(mdPath)
	if err != nil {
		return Header{}, false, fmt.Errorf("localdump: couldn't read file %s: %w", mdPath, err)
	}

	if !bytes.HasPrefix(source, frontMatterDelimiter) {
		return Header{}, false, nil
	}
	rest := source[len(frontMatterDelimiter):]
	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelimiter...))
	if end < 0 {
		return Header{}, false, fmt.Errorf("localdump: unterminated front matter in %s", mdPath)
	}

	if err := yaml.Unmarshal(rest[:end], &header); err != nil {
		return Header{}, false, fmt.Errorf("localdump: couldn't parse header of file %s: %w", mdPath, err)
	}
	if header.ObjectID == "" {
		return Header{}, false, errors.New("localdump: header seems broken in " + mdPath)
	}

	return header, true, nil
}
