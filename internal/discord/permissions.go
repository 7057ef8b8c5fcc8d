package discord

import "math/big"

// Permission bits checked by the dashboard
const (
	PermissionAdministrator = 0x8
	PermissionManageGuild   = 0x20
)

var manageMask = big.NewInt(PermissionAdministrator | PermissionManageGuild)

// CanManageGuild reports whether a decimal permission string has the
// administrator or manage-guild bit. Unparseable input grants nothing.
func CanManageGuild(raw string) bool {
	perms, ok := new(big.Int).SetString(raw, 10)
	if !ok || perms.Sign() < 0 {
		return false
	}
	return new(big.Int).And(perms, manageMask).Sign() != 0
}
