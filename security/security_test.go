package security

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"testing"

	"github.com/quillpdf/quill/ir/raw"
)

func TestPadPassword(t *testing.T) {
	got := padPassword([]byte("secret"))
	if len(got) != 32 {
		t.Fatalf("padded length = %d, want 32", len(got))
	}
	if !bytes.Equal(got[:6], []byte("secret")) {
		t.Errorf("padded prefix = %q", got[:6])
	}
	if !bytes.Equal(got[6:], passwordPadding[:26]) {
		t.Errorf("padding tail mismatch")
	}

	long := bytes.Repeat([]byte("x"), 40)
	if got := padPassword(long); !bytes.Equal(got, long[:32]) {
		t.Errorf("long password not truncated to 32 bytes")
	}
}

func TestPermissionsValue(t *testing.T) {
	all := PermissionsValue(raw.AllPermissions())
	if all != -4 {
		t.Errorf("all permissions = %d, want -4", all)
	}

	none := PermissionsValue(raw.Permissions{})
	for _, bit := range []uint{2, 3, 4, 5, 8, 9, 10, 11} {
		if none&(1<<bit) != 0 {
			t.Errorf("permission bit %d set with nothing granted", bit)
		}
	}
	// Reserved bits 6 and 7 stay set.
	if none&(1<<6) == 0 || none&(1<<7) == 0 {
		t.Errorf("reserved bits cleared: %b", none)
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	fileID := bytes.Repeat([]byte{0xAB}, 16)
	h, enc := NewWriterHandler("owner", "user", raw.AllPermissions(), fileID)

	plain := []byte("BT /F1 12 Tf (hello) Tj ET")
	cipher := h.Crypt(7, 0, plain)
	if bytes.Equal(cipher, plain) {
		t.Fatalf("Crypt returned plaintext")
	}
	if got := h.Crypt(7, 0, cipher); !bytes.Equal(got, plain) {
		t.Errorf("decrypt round trip = %q, want %q", got, plain)
	}

	reader, err := NewReaderHandler(enc, fileID, "user")
	if err != nil {
		t.Fatalf("NewReaderHandler: %v", err)
	}
	if got := reader.Crypt(7, 0, cipher); !bytes.Equal(got, plain) {
		t.Errorf("reader decrypt = %q, want %q", got, plain)
	}

	if _, err := NewReaderHandler(enc, fileID, "wrong"); err == nil {
		t.Errorf("wrong password accepted")
	}
}

func TestOwnerPasswordFallback(t *testing.T) {
	fileID := bytes.Repeat([]byte{0x01}, 16)
	_, withFallback := NewWriterHandler("", "user", raw.AllPermissions(), fileID)
	_, explicit := NewWriterHandler("user", "user", raw.AllPermissions(), fileID)

	o1, _ := withFallback.Get("O")
	o2, _ := explicit.Get("O")
	if !bytes.Equal(o1.(raw.String).Bytes, o2.(raw.String).Bytes) {
		t.Errorf("empty owner password does not fall back to user password")
	}
}

func TestUserEntryDeterministic(t *testing.T) {
	fileID := []byte("0123456789abcdef")
	_, enc1 := NewWriterHandler("o", "u", raw.AllPermissions(), fileID)
	_, enc2 := NewWriterHandler("o", "u", raw.AllPermissions(), fileID)

	u1, _ := enc1.Get("U")
	u2, _ := enc2.Get("U")
	if !bytes.Equal(u1.(raw.String).Bytes, u2.(raw.String).Bytes) {
		t.Errorf("U entry differs between identical inputs")
	}
	if len(u1.(raw.String).Bytes) != 32 {
		t.Errorf("U entry length = %d, want 32", len(u1.(raw.String).Bytes))
	}
}

func TestReaderRejectsUnsupported(t *testing.T) {
	enc := raw.NewDict()
	enc.Set("Filter", raw.NewName("Standard"))
	enc.Set("V", raw.NewInt(4))
	enc.Set("R", raw.NewInt(4))
	if _, err := NewReaderHandler(enc, nil, ""); err == nil {
		t.Errorf("AES revision accepted")
	}

	enc2 := raw.NewDict()
	enc2.Set("Filter", raw.NewName("Custom"))
	if _, err := NewReaderHandler(enc2, nil, ""); err == nil {
		t.Errorf("non-standard handler accepted")
	}
}

func TestReaderRevision2KeyDerivation(t *testing.T) {
	fileID := bytes.Repeat([]byte{0x42}, 16)
	p := int32(-4)

	// Build a revision 2 file by hand: single-pass O entry, 40-bit key
	// with no rehash loop, U = RC4(key, padding).
	osum := md5.Sum(padPassword([]byte("own")))
	o := rc4Apply(osum[:5], padPassword([]byte("use")))

	data := append(append([]byte{}, padPassword([]byte("use"))...), o...)
	var pBuf [4]byte
	binary.LittleEndian.PutUint32(pBuf[:], uint32(p))
	data = append(data, pBuf[:]...)
	data = append(data, fileID...)
	sum := md5.Sum(data)
	key := sum[:5]
	u := rc4Apply(key, passwordPadding)

	enc := raw.NewDict()
	enc.Set("Filter", raw.NewName("Standard"))
	enc.Set("V", raw.NewInt(1))
	enc.Set("R", raw.NewInt(2))
	enc.Set("O", raw.NewString(o))
	enc.Set("U", raw.NewString(u))
	enc.Set("P", raw.NewInt(int64(p)))

	h, err := NewReaderHandler(enc, fileID, "use")
	if err != nil {
		t.Fatalf("NewReaderHandler: %v", err)
	}
	if !bytes.Equal(h.key, key) {
		t.Errorf("derived key = %x, want %x", h.key, key)
	}
	if _, err := NewReaderHandler(enc, fileID, "wrong"); err == nil {
		t.Errorf("wrong password accepted on revision 2")
	}
}
