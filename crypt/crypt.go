// Package crypt implements the symmetric primitives used by provider extractors.
//
// The key derivation here reproduces OpenSSL's legacy EVP_BytesToKey scheme
// with MD5, because the external producers of these payloads still use it.
// It is intentionally compatible with that scheme, not a recommendation.
package crypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// saltedMagic is the 8-byte prefix OpenSSL writes in front of the salt.
var saltedMagic = []byte("Salted__")

// ErrMalformedEnvelope reports a payload that is not an OpenSSL salted envelope.
var ErrMalformedEnvelope = errors.New("crypt: malformed openssl envelope")

// ErrDecrypt reports a ciphertext that failed block decryption or padding checks.
var ErrDecrypt = errors.New("crypt: decryption failed")

// DeriveKeyIV derives a key and IV from a password and salt using the legacy
// OpenSSL EVP_BytesToKey construction: MD5 digests of previous‖password‖salt
// are concatenated until keyLen+ivLen bytes are available.
func DeriveKeyIV(password, salt []byte, keyLen, ivLen int) (key, iv []byte) {
	var derived []byte
	var block []byte

	for len(derived) < keyLen+ivLen {
		h := md5.New()
		h.Write(block)
		h.Write(password)
		h.Write(salt)
		block = h.Sum(nil)
		derived = append(derived, block...)
	}

	return derived[:keyLen], derived[keyLen : keyLen+ivLen]
}

// DecryptOpenSSL decodes a base64 blob produced by `openssl enc -aes-256-cbc`
// with a password (salted envelope format) and returns the plaintext.
//
// A missing Salted__ prefix yields ErrMalformedEnvelope; a broken ciphertext
// or padding yields ErrDecrypt. There is no partial output on failure.
func DecryptOpenSSL(blob string, password []byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedEnvelope, err)
	}

	if len(raw) < 16 || !bytes.Equal(raw[:8], saltedMagic) {
		return "", fmt.Errorf("%w: missing salt prefix", ErrMalformedEnvelope)
	}

	salt := raw[8:16]
	ciphertext := raw[16:]

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not block aligned", ErrDecrypt)
	}

	key, iv := DeriveKeyIV(password, salt, 32, aes.BlockSize)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrDecrypt, err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext)
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

// XorDecrypt applies a cyclic XOR of the hex-encoded key over data.
// The operation is symmetric: applying it twice restores the input.
func XorDecrypt(data []byte, hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("crypt: invalid hex key: %w", err)
	}
	if len(key) == 0 {
		return nil, errors.New("crypt: empty key")
	}

	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out, nil
}

// pkcs7Unpad strips PKCS#7 padding, rejecting inconsistent padding bytes.
func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", ErrDecrypt)
	}

	pad := int(data[len(data)-1])
	if pad == 0 || pad > aes.BlockSize || pad > len(data) {
		return nil, fmt.Errorf("%w: bad padding", ErrDecrypt)
	}

	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, fmt.Errorf("%w: bad padding", ErrDecrypt)
		}
	}

	return data[:len(data)-pad], nil
}
