package console

import (
	"github.com/odyssey-erp/usersync/internal/shared"
	"github.com/odyssey-erp/usersync/internal/syncctl"
)

// Session keys of the form fields. Each browser keeps its own form; only
// the user collection is shared by the process.
const (
	keyCreateName  = "form.create_name"
	keyCreateEmail = "form.create_email"
	keyUpdateID    = "form.update_id"
	keyUpdateName  = "form.update_name"
	keyUpdateEmail = "form.update_email"
)

func loadForm(sess *shared.Session) syncctl.Form {
	if sess == nil {
		return syncctl.Form{}
	}
	return syncctl.Form{
		CreateName:  sess.Get(keyCreateName),
		CreateEmail: sess.Get(keyCreateEmail),
		UpdateID:    sess.Get(keyUpdateID),
		UpdateName:  sess.Get(keyUpdateName),
		UpdateEmail: sess.Get(keyUpdateEmail),
	}
}

func saveForm(sess *shared.Session, form syncctl.Form) {
	if sess == nil {
		return
	}
	sess.Set(keyCreateName, form.CreateName)
	sess.Set(keyCreateEmail, form.CreateEmail)
	sess.Set(keyUpdateID, form.UpdateID)
	sess.Set(keyUpdateName, form.UpdateName)
	sess.Set(keyUpdateEmail, form.UpdateEmail)
}
