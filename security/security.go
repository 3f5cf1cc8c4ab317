// Package security implements the Standard security handler for RC4
// encryption (V=2, R=3, 128-bit keys): building Encrypt dictionaries
// for generated output and authenticating/decrypting inputs. Newer AES
// revisions are detected and rejected rather than half-supported.
package security

import (
	"crypto/md5"
	"crypto/rc4"
	"encoding/binary"
	"errors"

	"github.com/quillpdf/quill/ir/raw"
)

var passwordPadding = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

const keyLen = 16 // 128-bit file keys

func padPassword(pwd []byte) []byte {
	padded := make([]byte, 32)
	n := copy(padded, pwd)
	copy(padded[n:], passwordPadding[:32-n])
	return padded
}

func rc4Apply(key, data []byte) []byte {
	out := make([]byte, len(data))
	c, _ := rc4.NewCipher(key)
	c.XORKeyStream(out, data)
	return out
}

// rc4Rounds applies the 20-round RC4 chain used by revision 3 for the
// O and U entries.
func rc4Rounds(key, data []byte) []byte {
	out := rc4Apply(key, data)
	tmp := make([]byte, len(key))
	for i := 1; i <= 19; i++ {
		for j := range key {
			tmp[j] = key[j] ^ byte(i)
		}
		out = rc4Apply(tmp, out)
	}
	return out
}

// PermissionsValue packs permission flags into the P entry. Reserved
// high bits are set per the Standard handler.
func PermissionsValue(p raw.Permissions) int32 {
	val := int32(-4) // bits 1-2 cleared, everything else set
	if !p.Print {
		val &^= 1 << 2
	}
	if !p.Modify {
		val &^= 1 << 3
	}
	if !p.Copy {
		val &^= 1 << 4
	}
	if !p.ModifyAnnotations {
		val &^= 1 << 5
	}
	if !p.FillForms {
		val &^= 1 << 8
	}
	if !p.ExtractAccessible {
		val &^= 1 << 9
	}
	if !p.Assemble {
		val &^= 1 << 10
	}
	if !p.PrintHighQuality {
		val &^= 1 << 11
	}
	return val
}

func ownerEntry(ownerPwd, userPwd []byte) []byte {
	sum := md5.Sum(padPassword(ownerPwd))
	key := sum[:]
	for i := 0; i < 50; i++ {
		sum = md5.Sum(key)
		key = sum[:]
	}
	return rc4Rounds(key[:keyLen], padPassword(userPwd))
}

// fileKey derives the document encryption key (algorithm 2). The
// 50-iteration rehash applies to revision 3 and up only; revision 2
// takes the first hash directly.
func fileKey(userPwd, oEntry []byte, p int32, fileID []byte, rev int, n int) []byte {
	data := make([]byte, 0, 32+len(oEntry)+4+len(fileID))
	data = append(data, padPassword(userPwd)...)
	data = append(data, oEntry...)
	var pBuf [4]byte
	binary.LittleEndian.PutUint32(pBuf[:], uint32(p))
	data = append(data, pBuf[:]...)
	data = append(data, fileID...)

	sum := md5.Sum(data)
	key := sum[:]
	if rev >= 3 {
		for i := 0; i < 50; i++ {
			sum = md5.Sum(key[:n])
			key = sum[:]
		}
	}
	return key[:n]
}

// userEntry computes the revision 3 U value: zero-padded to 32 bytes so
// output stays deterministic.
func userEntry(key, fileID []byte) []byte {
	sum := md5.Sum(append(append([]byte{}, passwordPadding...), fileID...))
	u := rc4Rounds(key, sum[:])
	out := make([]byte, 32)
	copy(out, u)
	return out
}

// Handler encrypts or decrypts object payloads with a derived file key.
type Handler struct {
	key []byte
	p   int32
}

// NewWriterHandler builds the Encrypt dictionary and handler for
// generated output. An empty owner password falls back to the user
// password so the O entry is always well defined.
func NewWriterHandler(ownerPwd, userPwd string, perms raw.Permissions, fileID []byte) (*Handler, *raw.Dict) {
	if ownerPwd == "" {
		ownerPwd = userPwd
	}
	o := ownerEntry([]byte(ownerPwd), []byte(userPwd))
	p := PermissionsValue(perms)
	key := fileKey([]byte(userPwd), o, p, fileID, 3, keyLen)
	u := userEntry(key, fileID)

	enc := raw.NewDict()
	enc.Set("Filter", raw.NewName("Standard"))
	enc.Set("V", raw.NewInt(2))
	enc.Set("R", raw.NewInt(3))
	enc.Set("Length", raw.NewInt(keyLen*8))
	enc.Set("O", raw.NewString(o))
	enc.Set("U", raw.NewString(u))
	enc.Set("P", raw.NewInt(int64(p)))
	return &Handler{key: key, p: p}, enc
}

// NewReaderHandler authenticates against a parsed Encrypt dictionary
// with the given password (usually empty). Only the RC4 revisions are
// supported.
func NewReaderHandler(enc *raw.Dict, fileID []byte, password string) (*Handler, error) {
	if o, ok := enc.Get("Filter"); !ok {
		return nil, errors.New("unsupported security handler")
	} else if n, ok := o.(raw.Name); !ok || n.Val != "Standard" {
		return nil, errors.New("unsupported security handler")
	}
	v := dictInt(enc, "V", 0)
	r := dictInt(enc, "R", 2)
	if v > 2 || r > 3 {
		return nil, errors.New("unsupported encryption revision")
	}
	o := dictString(enc, "O")
	u := dictString(enc, "U")
	p := int32(dictInt(enc, "P", -1))

	n := int(dictInt(enc, "Length", 40)) / 8
	if r == 2 {
		n = 5
	}
	key := fileKey([]byte(password), o, p, fileID, int(r), n)
	if r == 2 {
		if string(rc4Apply(key, passwordPadding)) != string(u[:min(32, len(u))]) {
			return nil, errors.New("invalid password")
		}
	} else {
		want := userEntry(key, fileID)
		if len(u) < 16 || string(want[:16]) != string(u[:16]) {
			return nil, errors.New("invalid password")
		}
	}
	return &Handler{key: key, p: p}, nil
}

// objectKey derives the per-object RC4 key (algorithm 1).
func (h *Handler) objectKey(num, gen int) []byte {
	data := make([]byte, 0, len(h.key)+5)
	data = append(data, h.key...)
	data = append(data, byte(num), byte(num>>8), byte(num>>16))
	data = append(data, byte(gen), byte(gen>>8))
	sum := md5.Sum(data)
	n := len(h.key) + 5
	if n > 16 {
		n = 16
	}
	return sum[:n]
}

// Crypt encrypts or decrypts (RC4 is symmetric) one object's string or
// stream payload.
func (h *Handler) Crypt(num, gen int, data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	return rc4Apply(h.objectKey(num, gen), data)
}

func dictInt(d *raw.Dict, key string, def int64) int64 {
	if o, ok := d.Get(key); ok {
		if n, ok := o.(raw.Number); ok {
			return n.I
		}
	}
	return def
}

func dictString(d *raw.Dict, key string) []byte {
	if o, ok := d.Get(key); ok {
		if s, ok := o.(raw.String); ok {
			return s.Bytes
		}
	}
	return nil
}
