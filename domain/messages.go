package domain

// Message keys shared by validation and user notifications. The i18n
// catalog in pkg/i18n renders them per language.
const (
	MsgRequired        = "field.required"
	MsgMaxLength       = "field.max_length"
	MsgInvalidChoice   = "field.invalid_choice"
	MsgInvalidDate     = "field.invalid_date"
	MsgInvalidEmail    = "field.invalid_email"
	MsgInvalidUsername = "field.invalid_username"

	MsgEndBeforeStart = "project.end_before_start"
	MsgDueInPast      = "task.due_in_past"

	MsgEmailTaken         = "user.email_taken"
	MsgUsernameTaken      = "user.username_taken"
	MsgPasswordMismatch   = "user.password_mismatch"
	MsgPasswordTooShort   = "user.password_too_short"
	MsgPasswordNumeric    = "user.password_numeric"
	MsgPasswordSimilar    = "user.password_similar"
	MsgInvalidCredentials = "user.invalid_credentials"

	MsgAccountCreated = "flash.account_created"
	MsgProjectCreated = "flash.project_created"
	MsgProjectUpdated = "flash.project_updated"
	MsgProjectDeleted = "flash.project_deleted"
	MsgTaskCreated    = "flash.task_created"
	MsgTaskUpdated    = "flash.task_updated"
	MsgTaskDeleted    = "flash.task_deleted"
	MsgLoggedOut      = "flash.logged_out"
	MsgAdminSaved     = "flash.admin_saved"
	MsgAdminDeleted   = "flash.admin_deleted"
)
