package crypto

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadKeyFile loads the key file at path.
//
// Every non-empty line is "<version>:<base64 key>". A file holding a single
// line without a version prefix is treated as version 1. Lines starting
// with '#' are ignored.
func ReadKeyFile(path string) (map[int][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyUnavailable, err)
	}
	return ParseKeys(data)
}

// ParseKeys parses key file contents. See [ReadKeyFile] for the format.
func ParseKeys(data []byte) (map[int][]byte, error) {
	keys := make(map[int][]byte)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		version := 1
		encoded := line
		if prefix, rest, found := strings.Cut(line, ":"); found {
			v, err := strconv.Atoi(prefix)
			if err != nil || v < 1 {
				return nil, fmt.Errorf("%w: line %d: bad key version %q", ErrKeyUnavailable, lineNo, prefix)
			}
			version, encoded = v, rest
		} else if len(keys) > 0 {
			return nil, fmt.Errorf("%w: line %d: missing key version", ErrKeyUnavailable, lineNo)
		}

		if _, dup := keys[version]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate key version %d", ErrKeyUnavailable, lineNo, version)
		}

		material, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrKeyUnavailable, lineNo, err)
		}
		keys[version] = material
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyUnavailable, err)
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: key file is empty", ErrKeyUnavailable)
	}
	return keys, nil
}

// GenerateKey returns MinKeyMaterial random bytes.
func GenerateKey() ([]byte, error) {
	key := make([]byte, MinKeyMaterial)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// AddKeyVersion appends a freshly generated key to the key file at path and
// returns its version. A missing file is created with mode 0600 and the key
// becomes version 1. Older versions stay in place so existing credentials
// remain readable.
func AddKeyVersion(path string) (int, error) {
	next := 1
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		keys, err := ParseKeys(data)
		if err != nil {
			return 0, err
		}
		for v := range keys {
			if v >= next {
				next = v + 1
			}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return 0, fmt.Errorf("read key file: %w", err)
	}

	key, err := GenerateKey()
	if err != nil {
		return 0, fmt.Errorf("generate key: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, fmt.Errorf("open key file: %w", err)
	}
	defer f.Close()

	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		if _, err := f.WriteString("\n"); err != nil {
			return 0, fmt.Errorf("write key file: %w", err)
		}
	}
	if _, err := fmt.Fprintf(f, "%d:%s\n", next, base64.StdEncoding.EncodeToString(key)); err != nil {
		return 0, fmt.Errorf("write key file: %w", err)
	}

	return next, nil
}
