// Package auditlog writes an encrypted trail of gateway requests and
// responses. Entries are AES-256-CBC encrypted with a key derived from
// the merchant's API key pair, one base64 line per entry, so the log
// file is useless without the keys.
package auditlog

import (
	"bufio"
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 3:04 pm"

// DeriveKey builds the symmetric key from the merchant's key pair.
// Both halves are needed so a leaked public key alone cannot read the
// log.
func DeriveKey(publicKey, privateKey string) [32]byte {
	return sha256.Sum256([]byte(publicKey + privateKey))
}

// Logger appends encrypted entries to a file. Disabled loggers are
// no-ops so call sites never need to branch on the debug setting.
type Logger struct {
	mu      sync.Mutex
	path    string
	key     [32]byte
	enabled bool
	now     func() time.Time
}

// New creates a logger writing to path. The log only records anything
// when enabled (the merchant's debug setting).
func New(path, publicKey, privateKey string, enabled bool) *Logger {
	return &Logger{
		path:    path,
		key:     DeriveKey(publicKey, privateKey),
		enabled: enabled,
		now:     time.Now,
	}
}

// Enabled reports whether entries are being recorded.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Log appends one encrypted entry. The file is opened per write in
// append mode; single-line appends keep concurrent writers from
// interleaving within an entry.
func (l *Logger) Log(label, payload string) error {
	if !l.enabled {
		return nil
	}

	entry := fmt.Sprintf("%s : %s :- %s", l.now().Format(timestampFormat), label, payload)
	line, err := Encrypt(l.key, []byte(entry))
	if err != nil {
		return fmt.Errorf("encrypting log entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("writing log entry: %w", err)
	}
	return nil
}

// Read decrypts the log file. Corrupt lines are skipped: damage to
// one entry never hides the rest of the trail.
func (l *Logger) Read() ([]string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	return Decode(l.key, f)
}

// Decode decrypts base64 lines from r with the given key, skipping
// lines that fail to decode or decrypt.
func Decode(key [32]byte, r io.Reader) ([]string, error) {
	var entries []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		plain, err := DecryptLine(key, string(line))
		if err != nil {
			continue
		}
		entries = append(entries, plain)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("reading log: %w", err)
	}
	return entries, nil
}

// Encrypt produces one log line: base64 of a random IV followed by
// the CBC ciphertext of the PKCS#7-padded plaintext.
func Encrypt(key [32]byte, plaintext []byte) (string, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(append(iv, ciphertext...)), nil
}

// DecryptLine reverses Encrypt for a single log line.
func DecryptLine(key [32]byte, line string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(line)
	if err != nil {
		return "", fmt.Errorf("decoding line: %w", err)
	}
	if len(raw) < aes.BlockSize || (len(raw)-aes.BlockSize)%aes.BlockSize != 0 {
		return "", fmt.Errorf("malformed line length %d", len(raw))
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", err
	}

	iv, ciphertext := raw[:aes.BlockSize], raw[aes.BlockSize:]
	if len(ciphertext) == 0 {
		return "", fmt.Errorf("empty ciphertext")
	}
	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(pad)}, pad)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", pad)
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-pad], nil
}
