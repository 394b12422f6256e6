package guards

import (
	"context"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
	"github.com/looplj/crmhub/internal/store"
)

// DocumentAttachmentGuard rejects documents that point at more than one
// primary record. Zero attachments is valid; the document is then a
// free-standing upload.
func DocumentAttachmentGuard() store.GuardFunc {
	return func(ctx context.Context, m *store.Mutation) error {
		if m.Entity != objects.EntityDocument || m.Op != policies.OpInsert {
			return nil
		}

		doc, ok := m.New.(*objects.Document)
		if !ok {
			return nil
		}

		if n := doc.AttachmentCount(); n > 1 {
			return violationf("document_attachment", "document points at %d primary records; at most one is allowed", n)
		}

		return nil
	}
}
