package crypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// encryptOpenSSL builds a salted envelope the way `openssl enc -aes-256-cbc` does,
// so the decrypt path can be verified against a known-good producer.
func encryptOpenSSL(plaintext, password, salt []byte) string {
	key, iv := DeriveKeyIV(password, salt, 32, aes.BlockSize)

	pad := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append(append([]byte{}, plaintext...), bytes.Repeat([]byte{byte(pad)}, pad)...)

	block, _ := aes.NewCipher(key)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	blob := append([]byte("Salted__"), salt...)
	blob = append(blob, ciphertext...)
	return base64.StdEncoding.EncodeToString(blob)
}

func TestDeriveKeyIV(t *testing.T) {
	Convey("DeriveKeyIV", t, func() {
		key, iv := DeriveKeyIV([]byte("secret"), []byte("12345678"), 32, 16)

		Convey("Should produce the requested lengths", func() {
			So(len(key), ShouldEqual, 32)
			So(len(iv), ShouldEqual, 16)
		})

		Convey("Should be deterministic", func() {
			key2, iv2 := DeriveKeyIV([]byte("secret"), []byte("12345678"), 32, 16)
			So(bytes.Equal(key, key2), ShouldBeTrue)
			So(bytes.Equal(iv, iv2), ShouldBeTrue)
		})

		Convey("Should change with the salt", func() {
			key3, _ := DeriveKeyIV([]byte("secret"), []byte("87654321"), 32, 16)
			So(bytes.Equal(key, key3), ShouldBeFalse)
		})
	})
}

func TestDecryptOpenSSL(t *testing.T) {
	Convey("DecryptOpenSSL", t, func() {
		password := []byte("hunter2")
		salt := []byte("abcdefgh")

		Convey("Should round-trip a salted envelope", func() {
			blob := encryptOpenSSL([]byte(`[{"file":"https://cdn.example/master.m3u8"}]`), password, salt)
			plain, err := DecryptOpenSSL(blob, password)
			So(err, ShouldBeNil)
			So(plain, ShouldEqual, `[{"file":"https://cdn.example/master.m3u8"}]`)
		})

		Convey("Should fail with a format error when the magic prefix is absent", func() {
			blob := base64.StdEncoding.EncodeToString([]byte("NotSaltd12345678whatever-bytes!!"))
			out, err := DecryptOpenSSL(blob, password)
			So(err, ShouldWrap, ErrMalformedEnvelope)
			So(out, ShouldBeEmpty)
		})

		Convey("Should fail with a format error on invalid base64", func() {
			_, err := DecryptOpenSSL("%%% not base64 %%%", password)
			So(err, ShouldWrap, ErrMalformedEnvelope)
		})

		Convey("Should fail with a crypto error on a wrong password", func() {
			blob := encryptOpenSSL([]byte("some fairly long plaintext to pad"), password, salt)
			_, err := DecryptOpenSSL(blob, []byte("wrong"))
			So(err, ShouldWrap, ErrDecrypt)
		})

		Convey("Should fail with a crypto error on truncated ciphertext", func() {
			raw := append([]byte("Salted__"), salt...)
			raw = append(raw, 0x01, 0x02, 0x03)
			_, err := DecryptOpenSSL(base64.StdEncoding.EncodeToString(raw), password)
			So(err, ShouldWrap, ErrDecrypt)
		})
	})
}

func TestXorDecrypt(t *testing.T) {
	Convey("XorDecrypt", t, func() {
		key := hex.EncodeToString([]byte("page-key-material"))

		Convey("Should be its own inverse", func() {
			data := []byte{0x00, 0x10, 0xff, 0x42, 0x42, 0x00, 0x7f}
			once, err := XorDecrypt(data, key)
			So(err, ShouldBeNil)
			twice, err := XorDecrypt(once, key)
			So(err, ShouldBeNil)
			So(bytes.Equal(twice, data), ShouldBeTrue)
		})

		Convey("Should cycle the key over longer inputs", func() {
			data := bytes.Repeat([]byte{0xAA}, 100)
			out, err := XorDecrypt(data, "0f")
			So(err, ShouldBeNil)
			for _, b := range out {
				So(b, ShouldEqual, byte(0xAA^0x0f))
			}
		})

		Convey("Should reject a non-hex key", func() {
			_, err := XorDecrypt([]byte("data"), "zz")
			So(err, ShouldNotBeNil)
		})

		Convey("Should reject an empty key", func() {
			_, err := XorDecrypt([]byte("data"), "")
			So(err, ShouldNotBeNil)
		})
	})
}
