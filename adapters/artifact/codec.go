// Package artifact persists model artifacts as versioned files: a text
// header "CRMODEL/<version> sha256=<hex>" followed by a JSON body whose
// digest the header records.
package artifact

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"creditrisk/domain/artifact"
	"creditrisk/domain/core"
	"creditrisk/internal/errors"
)

const (
	// FormatVersion is the version written by Encode
	FormatVersion = 1
	magic         = "CRMODEL/"
)

// Encode writes a in the current format version
func Encode(w io.Writer, a *artifact.ModelArtifact) error {
	if err := a.Validate(); err != nil {
		return errors.InvalidArgument("invalid artifact: %v", err)
	}

	body, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return errors.IOError("failed to encode artifact", err)
	}

	header := fmt.Sprintf("%s%d sha256=%s\n", magic, FormatVersion, core.NewHash(body))
	if _, err := io.WriteString(w, header); err != nil {
		return errors.IOError("failed to write artifact header", err)
	}
	if _, err := w.Write(body); err != nil {
		return errors.IOError("failed to write artifact body", err)
	}
	return nil
}

// Decode reads an artifact, rejecting unknown versions and bodies that
// do not match the recorded digest
func Decode(r io.Reader) (*artifact.ModelArtifact, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil {
		return nil, errors.IOError("failed to read artifact header", err)
	}

	version, digest, err := parseHeader(strings.TrimSuffix(line, "\n"))
	if err != nil {
		return nil, err
	}
	if version != FormatVersion {
		return nil, errors.IOError(fmt.Sprintf("unsupported artifact format version %d (supported: %d)", version, FormatVersion), nil)
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, errors.IOError("failed to read artifact body", err)
	}
	if got := core.NewHash(body); !got.Equals(digest) {
		return nil, errors.IOError(fmt.Sprintf("artifact checksum mismatch: header %s, body %s", digest, got), nil)
	}

	var a artifact.ModelArtifact
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, errors.IOError("failed to decode artifact body", err)
	}
	return &a, nil
}

func parseHeader(line string) (int, core.Hash, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 || !strings.HasPrefix(fields[0], magic) || !strings.HasPrefix(fields[1], "sha256=") {
		return 0, "", errors.IOError(fmt.Sprintf("malformed artifact header %q", line), nil)
	}
	version, err := strconv.Atoi(strings.TrimPrefix(fields[0], magic))
	if err != nil {
		return 0, "", errors.IOError(fmt.Sprintf("malformed artifact version in %q", line), err)
	}
	return version, core.Hash(strings.TrimPrefix(fields[1], "sha256=")), nil
}
