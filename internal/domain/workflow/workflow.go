package workflow

import (
	"github.com/google/uuid"
)

// DocumentType identifies the kind of document attached to a workflow
type DocumentType string

const (
	DocumentTypeSalesOrder    DocumentType = "sales_order"
	DocumentTypePurchaseOrder DocumentType = "purchase_order"
	DocumentTypeInvoice       DocumentType = "invoice"
)

// State is the lifecycle state of a document as seen by the approval engine
type State string

const (
	StateDrafted    State = "drafted"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
	StateClosed     State = "closed"
	StateVoided     State = "voided"
)

// Workflowable is the capability a document exposes to the workflow boundary.
// The purchasing core only consumes the purchasable check; approval routing
// itself is owned by the external workflow engine.
type Workflowable interface {
	WorkflowDocumentType() DocumentType
	WorkflowDocumentID() uuid.UUID
	WorkflowState() State
}

// purchasableStates are the sales order states in which purchase orders
// may be generated against outstanding demand. Draft orders are not yet
// committed demand; closed and voided orders have none left.
var purchasableStates = map[State]bool{
	StateInProgress: true,
}

// IsPurchasable reports whether purchasing may run against the document
func IsPurchasable(doc Workflowable) bool {
	if doc.WorkflowDocumentType() != DocumentTypeSalesOrder {
		return false
	}
	return purchasableStates[doc.WorkflowState()]
}
