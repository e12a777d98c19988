package durable

import (
	"bufio"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Backend is the persistence contract a Memory Store writes through.
type Backend interface {
	Load() ([]MemoryRecord, error)
	Append(r *MemoryRecord) error
	Flush() error
	Clear() error
}

const nonceSize = 12 // AES-GCM standard nonce size

// FileBackend is the file-backed append log: line -> base64 (if compressed or
// encrypted) -> optional AES-256-GCM -> optional zstd -> canonical JSON.
// Encryption always compresses the intermediate plaintext first.
type FileBackend struct {
	path        string
	walPath     string
	skPath      string
	compress    bool
	gcm         cipher.AEAD
	hasEnvelope bool

	writer *bufio.Writer
	file   *os.File
}

// Options configures a FileBackend. The zero value is a plain, uncompressed,
// unencrypted backend.
type Options struct {
	Compress bool
	// MasterKey, when non-nil, turns on AES-256-GCM encryption with an
	// envelope-rewrapped session key. Implies Compress.
	MasterKey *[32]byte
}

// NewFileBackend opens or creates a file-backed log at path under opts.
// When opts.MasterKey is set, an existing sibling .sk file is opened (and its
// session key unwrapped) if present, otherwise a fresh envelope is created.
func NewFileBackend(path string, opts Options) (*FileBackend, error) {
	b := &FileBackend{
		path:     path,
		walPath:  path + ".wal",
		skPath:   path + ".sk",
		compress: opts.Compress,
	}
	if opts.MasterKey != nil {
		b.compress = true
		if err := b.initEncryption(*opts.MasterKey); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *FileBackend) initEncryption(masterKey [32]byte) error {
	master, err := newGCM(masterKey[:])
	if err != nil {
		return err
	}
	if _, err := os.Stat(b.skPath); err == nil {
		sessionKey, err := openEnvelope(b.skPath, master)
		if err != nil {
			return err
		}
		gcm, err := newGCM(sessionKey)
		if err != nil {
			return err
		}
		b.gcm = gcm
		b.hasEnvelope = true
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("durable: stat envelope: %w", err)
	}

	sessionKey := make([]byte, 32)
	if _, err := rand.Read(sessionKey); err != nil {
		return fmt.Errorf("durable: generate session key: %w", err)
	}
	if err := createEnvelope(b.skPath, master, sessionKey); err != nil {
		return err
	}
	gcm, err := newGCM(sessionKey)
	if err != nil {
		return err
	}
	b.gcm = gcm
	b.hasEnvelope = true
	return nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("durable: init AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("durable: init AES-GCM: %w", err)
	}
	return gcm, nil
}

// createEnvelope generates a fresh nonce, seals sessionKey under master, and
// writes base64(nonce || ciphertext) to skPath.
func createEnvelope(skPath string, master cipher.AEAD, sessionKey []byte) error {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("durable: generate envelope nonce: %w", err)
	}
	ciphertext := master.Seal(nil, nonce, sessionKey, nil)
	encoded := base64.StdEncoding.EncodeToString(append(nonce, ciphertext...))
	if err := os.WriteFile(skPath, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("durable: write envelope: %w", err)
	}
	return nil
}

// openEnvelope reads skPath and unwraps the session key under master.
func openEnvelope(skPath string, master cipher.AEAD) ([]byte, error) {
	data, err := os.ReadFile(skPath)
	if err != nil {
		return nil, fmt.Errorf("durable: read envelope: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("durable: decode envelope: %w", err)
	}
	if len(raw) < nonceSize {
		return nil, fmt.Errorf("durable: envelope truncated")
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	sessionKey, err := master.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("durable: unwrap session key: %w", err)
	}
	return sessionKey, nil
}

// encLine is the on-disk shape of an encrypted line.
type encLine struct {
	Nonce string `json:"nonce"`
	Data  string `json:"data"`
}

func zstdCompress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("durable: init zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func zstdDecompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("durable: init zstd reader: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("durable: zstd decompress: %w", err)
	}
	return out, nil
}

// encodeLine renders one record as its on-disk line, per §4.D's layered
// encoding (outer to inner): line -> base64 (if compressed/encrypted) ->
// optional AES-GCM -> optional zstd -> canonical JSON.
func (b *FileBackend) encodeLine(r *MemoryRecord) ([]byte, error) {
	data, err := canonicalJSON(*r)
	if err != nil {
		return nil, fmt.Errorf("durable: marshal record: %w", err)
	}

	if b.gcm != nil {
		compressed, err := zstdCompress(data)
		if err != nil {
			return nil, err
		}
		nonce := make([]byte, nonceSize)
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("durable: generate nonce: %w", err)
		}
		ciphertext := b.gcm.Seal(nil, nonce, compressed, nil)
		enc := encLine{
			Nonce: base64.StdEncoding.EncodeToString(nonce),
			Data:  base64.StdEncoding.EncodeToString(ciphertext),
		}
		return json.Marshal(enc)
	}
	if b.compress {
		compressed, err := zstdCompress(data)
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(compressed)
		return []byte(encoded), nil
	}
	return data, nil
}

// decodeLine reverses encodeLine.
func (b *FileBackend) decodeLine(line string) (MemoryRecord, error) {
	var rec MemoryRecord
	if b.gcm != nil {
		var enc encLine
		if err := json.Unmarshal([]byte(line), &enc); err != nil {
			return rec, fmt.Errorf("durable: decode encrypted line: %w", err)
		}
		nonce, err := base64.StdEncoding.DecodeString(enc.Nonce)
		if err != nil {
			return rec, fmt.Errorf("durable: decode nonce: %w", err)
		}
		ciphertext, err := base64.StdEncoding.DecodeString(enc.Data)
		if err != nil {
			return rec, fmt.Errorf("durable: decode ciphertext: %w", err)
		}
		plain, err := b.gcm.Open(nil, nonce, ciphertext, nil)
		if err != nil {
			return rec, fmt.Errorf("durable: decrypt line: %w", err)
		}
		decompressed, err := zstdDecompress(plain)
		if err != nil {
			return rec, err
		}
		if err := json.Unmarshal(decompressed, &rec); err != nil {
			return rec, fmt.Errorf("durable: unmarshal record: %w", err)
		}
		return rec, nil
	}
	if b.compress {
		raw, err := base64.StdEncoding.DecodeString(line)
		if err != nil {
			return rec, fmt.Errorf("durable: decode compressed line: %w", err)
		}
		decompressed, err := zstdDecompress(raw)
		if err != nil {
			return rec, err
		}
		if err := json.Unmarshal(decompressed, &rec); err != nil {
			return rec, fmt.Errorf("durable: unmarshal record: %w", err)
		}
		return rec, nil
	}
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return rec, fmt.Errorf("durable: unmarshal record: %w", err)
	}
	return rec, nil
}

// Load reads the main file, then replays and deletes any WAL, mirroring
// unacknowledged appends.
func (b *FileBackend) Load() ([]MemoryRecord, error) {
	var records []MemoryRecord

	if f, err := os.Open(b.path); err == nil {
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			rec, err := b.decodeLine(line)
			if err != nil {
				f.Close()
				return nil, err
			}
			records = append(records, rec)
		}
		err := scanner.Err()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("durable: scan main file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("durable: open main file: %w", err)
	}

	if f, err := os.Open(b.walPath); err == nil {
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var rec MemoryRecord
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				f.Close()
				return nil, fmt.Errorf("durable: unmarshal WAL record: %w", err)
			}
			records = append(records, rec)
		}
		err := scanner.Err()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("durable: scan WAL: %w", err)
		}
		if err := os.Remove(b.walPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("durable: remove WAL: %w", err)
		}
		slog.Info("[durable] recovered records from WAL", "count", len(records))
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("durable: open WAL: %w", err)
	}

	return records, nil
}

// Append writes the encoded line to the main file buffer, then the plaintext
// canonical JSON of r to the sibling WAL file.
func (b *FileBackend) Append(r *MemoryRecord) error {
	if b.writer == nil {
		if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil && filepath.Dir(b.path) != "." {
			return fmt.Errorf("durable: create store dir: %w", err)
		}
		f, err := os.OpenFile(b.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("durable: open main file: %w", err)
		}
		b.file = f
		b.writer = bufio.NewWriter(f)
	}

	line, err := b.encodeLine(r)
	if err != nil {
		return err
	}
	if _, err := b.writer.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("durable: write main file: %w", err)
	}

	walLine, err := canonicalJSON(*r)
	if err != nil {
		return fmt.Errorf("durable: marshal WAL record: %w", err)
	}
	wf, err := os.OpenFile(b.walPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("durable: open WAL: %w", err)
	}
	defer wf.Close()
	if _, err := wf.Write(append(walLine, '\n')); err != nil {
		return fmt.Errorf("durable: write WAL: %w", err)
	}
	return nil
}

// Flush flushes the buffered writer, then removes the WAL.
func (b *FileBackend) Flush() error {
	if b.writer != nil {
		if err := b.writer.Flush(); err != nil {
			return fmt.Errorf("durable: flush main file: %w", err)
		}
	}
	if err := os.Remove(b.walPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("durable: remove WAL: %w", err)
	}
	return nil
}

// Clear deletes the main file, WAL, and .sk envelope (if any).
func (b *FileBackend) Clear() error {
	if b.writer != nil {
		_ = b.writer.Flush()
	}
	if b.file != nil {
		_ = b.file.Close()
		b.file = nil
		b.writer = nil
	}
	for _, p := range []string{b.path, b.walPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("durable: clear %s: %w", p, err)
		}
	}
	if b.hasEnvelope {
		if err := os.Remove(b.skPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("durable: clear envelope: %w", err)
		}
	}
	return nil
}
