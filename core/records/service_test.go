package records

import (
	"errors"
	"testing"

	"ehealthwave/core/audit"
	"ehealthwave/core/digest"
	"ehealthwave/core/ledger"
)

func newTestService(t *testing.T) (*Service, *ledger.Ledger) {
	t.Helper()
	chain, err := ledger.New(digest.SHA256{})
	if err != nil {
		t.Fatal(err)
	}
	return NewService(chain, audit.NopLogger{}), chain
}

func TestAddRecordReturnsBlock(t *testing.T) {
	svc, chain := newTestService(t)

	blk, err := svc.AddRecord("user_1", map[string]interface{}{"title": "CBC"})
	if err != nil {
		t.Fatalf("add record failed: %v", err)
	}
	if blk.SequenceID != "block_1" {
		t.Errorf("expected block_1, got %s", blk.SequenceID)
	}
	if blk.Payload.Kind() != ledger.KindMedicalRecord {
		t.Errorf("expected medical record payload, got %s", blk.Payload.Kind())
	}
	if chain.Height() != 2 {
		t.Errorf("expected chain height 2, got %d", chain.Height())
	}
}

func TestRecordIsolationBetweenUsers(t *testing.T) {
	svc, _ := newTestService(t)

	svc.AddRecord("user_1", map[string]interface{}{"title": "bodyX"})
	svc.AddRecord("user_2", map[string]interface{}{"title": "bodyY"})

	got := svc.RecordsFor("user_1")
	if len(got) != 1 {
		t.Fatalf("expected 1 record for user_1, got %d", len(got))
	}
	if title, _ := got[0].Data["title"].(string); title != "bodyX" {
		t.Errorf("expected bodyX, got %v", got[0].Data["title"])
	}
	for _, view := range got {
		if title, _ := view.Data["title"].(string); title == "bodyY" {
			t.Error("user_1 results must never contain user_2 records")
		}
	}
}

func TestRecordsForOrdering(t *testing.T) {
	svc, _ := newTestService(t)
	svc.AddRecord("user_1", map[string]interface{}{"n": 0})
	svc.AddRecord("user_1", map[string]interface{}{"n": 1})
	svc.AddRecord("user_1", map[string]interface{}{"n": 2})

	got := svc.RecordsFor("user_1")
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	// Insertion order, oldest first.
	for i, view := range got {
		if n, _ := view.Data["n"].(int); n != i {
			t.Errorf("expected record %d at position %d, got %v", i, i, view.Data["n"])
		}
	}
}

func TestRecordViewProjection(t *testing.T) {
	svc, chain := newTestService(t)
	blk, _ := svc.AddRecord("user_1", map[string]interface{}{"title": "CBC"})

	views := svc.RecordsFor("user_1")
	if len(views) != 1 {
		t.Fatal("expected one view")
	}
	v := views[0]
	if v.ID != blk.SequenceID || v.Digest != blk.Digest {
		t.Errorf("view must expose the block id and digest, got %s / %s", v.ID, v.Digest)
	}
	if !chain.Verify() {
		t.Error("chain must still verify")
	}
}

func TestShareRecord(t *testing.T) {
	svc, chain := newTestService(t)
	blk, _ := svc.AddRecord("user_1", map[string]interface{}{"title": "CBC"})

	ok, err := svc.ShareRecord(blk.SequenceID, "doctor_7")
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if !ok {
		t.Error("share must report success")
	}

	grants := chain.Where(func(b ledger.Block) bool {
		return b.Payload.Kind() == ledger.KindRecordSharing
	})
	if len(grants) != 1 {
		t.Fatalf("expected 1 sharing grant block, got %d", len(grants))
	}
	if grants[0].Payload.RecordID() != blk.SequenceID {
		t.Errorf("grant references wrong record: %s", grants[0].Payload.RecordID())
	}
}

func TestShareRecordNotFound(t *testing.T) {
	svc, chain := newTestService(t)

	before := chain.Height()
	ok, err := svc.ShareRecord("block_999", "doctor_7")
	if ok || err == nil {
		t.Fatal("expected share of unknown record to fail")
	}
	var notFound *RecordNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected RecordNotFoundError, got %v", err)
	}
	if chain.Height() != before {
		t.Error("failed share must not append anything")
	}
}

func TestShareRejectsNonRecordBlocks(t *testing.T) {
	svc, _ := newTestService(t)
	// Genesis exists but is not a medical record.
	if ok, err := svc.ShareRecord(ledger.GenesisSequenceID, "doctor_7"); ok || err == nil {
		t.Error("sharing the genesis block must fail with not found")
	}
}

func TestAttachFile(t *testing.T) {
	svc, chain := newTestService(t)
	blk, _ := svc.AddRecord("user_1", map[string]interface{}{"title": "X-Ray"})

	ok, err := svc.AttachFile(blk.SequenceID, ledger.FileMetadata{
		Name: "scan.png",
		Type: "image/png",
		URL:  "https://files.example/scan.png",
		Size: 2048,
	})
	if err != nil || !ok {
		t.Fatalf("attach failed: ok=%v err=%v", ok, err)
	}

	attachments := chain.Where(func(b ledger.Block) bool {
		return b.Payload.Kind() == ledger.KindFileAttachment
	})
	if len(attachments) != 1 {
		t.Fatalf("expected 1 attachment block, got %d", len(attachments))
	}

	if ok, err := svc.AttachFile("block_404", ledger.FileMetadata{Name: "x"}); ok || err == nil {
		t.Error("attaching to an unknown record must fail")
	}
}

func TestVerifyIntegrity(t *testing.T) {
	svc, _ := newTestService(t)
	svc.AddRecord("user_1", map[string]interface{}{"title": "CBC"})
	if !svc.VerifyIntegrity() {
		t.Error("untouched ledger must verify")
	}
}
