package shared

import "sort"

// Permission strings grouped per module.
const (
	PermMasterDataView = "masterdata.view"
	PermMasterDataEdit = "masterdata.edit"

	PermSalesView    = "sales.view"
	PermSalesEdit    = "sales.edit"
	PermSalesApprove = "sales.approve"

	PermFinancePayments = "finance.payments"
	PermFinancePost     = "finance.post"
	PermFinanceView     = "finance.view"

	PermPurchasingView    = "purchasing.view"
	PermPurchasingEdit    = "purchasing.edit"
	PermPurchasingApprove = "purchasing.approve"

	PermInventoryView = "inventory.view"
	PermInventoryEdit = "inventory.edit"

	PermProjectsView = "projects.view"
	PermProjectsEdit = "projects.edit"

	PermAssetsView = "assets.view"
	PermAssetsEdit = "assets.edit"

	PermHRView         = "hr.view"
	PermHREdit         = "hr.edit"
	PermPayrollRun     = "hr.payroll.run"
	PermPayrollApprove = "hr.payroll.approve"

	PermErrLogView = "errlog.view"

	PermAdmin = "admin"
)

// Actor carries the authenticated user's identity and effective permissions
// into service operations. Lifecycle actions check capabilities through the
// actor instead of reading ambient session state.
type Actor struct {
	UserID      int64
	permissions map[string]struct{}
}

// NewActor builds an Actor from resolved permission strings.
func NewActor(userID int64, perms []string) Actor {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return Actor{UserID: userID, permissions: set}
}

// Can reports whether the actor holds the permission. Admin implies all.
func (a Actor) Can(perm string) bool {
	if _, ok := a.permissions[PermAdmin]; ok {
		return true
	}
	_, ok := a.permissions[perm]
	return ok
}

// Permissions returns the actor's permission strings in sorted order.
func (a Actor) Permissions() []string {
	out := make([]string, 0, len(a.permissions))
	for p := range a.permissions {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Require returns ErrForbidden unless the actor holds the permission.
func (a Actor) Require(perm string) error {
	if !a.Can(perm) {
		return ErrForbidden
	}
	return nil
}
