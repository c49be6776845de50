package api

// Function names understood by the AJAX endpoint.
const (
	FuncGetEmailAddress = "get_email_address"
	FuncSetEmailUser    = "set_email_user"
	FuncCheckEmail      = "check_email"
	FuncGetEmailList    = "get_email_list"
	FuncFetchEmail      = "fetch_email"
	FuncDelEmail        = "del_email"
	FuncForgetMe        = "forget_me"
	FuncExtend          = "extend"
)

// Subscription carries the subscription fields that accompany address and
// listing responses.
type Subscription struct {
	Active    string `json:"s_active"`
	Date      string `json:"s_date"`
	Time      Int64  `json:"s_time"`
	ExpiresAt Int64  `json:"s_time_expires"`
}

// AddressResponse is returned by get_email_address and set_email_user.
type AddressResponse struct {
	EmailAddr      string `json:"email_addr"`
	EmailTimestamp Int64  `json:"email_timestamp"`
	Alias          string `json:"alias"`
	SIDToken       string `json:"sid_token"`
	Subscription
}

// MailSummary is one entry of a check_email or get_email_list response.
type MailSummary struct {
	MailID        Int64  `json:"mail_id"`
	MailFrom      string `json:"mail_from"`
	MailSubject   string `json:"mail_subject"`
	MailExcerpt   string `json:"mail_excerpt"`
	MailTimestamp Int64  `json:"mail_timestamp"`
	MailRead      Int64  `json:"mail_read"`
	MailDate      string `json:"mail_date"`
}

// ListResponse is returned by check_email and get_email_list.
type ListResponse struct {
	List  []MailSummary `json:"list"`
	Count Int64         `json:"count"`
	Email string        `json:"email"`
	TS    Int64         `json:"ts"`
	Subscription
}

// MailResponse is returned by fetch_email.
type MailResponse struct {
	MailID        Int64  `json:"mail_id"`
	MailFrom      string `json:"mail_from"`
	MailRecipient string `json:"mail_recipient"`
	MailSubject   string `json:"mail_subject"`
	MailExcerpt   string `json:"mail_excerpt"`
	MailBody      string `json:"mail_body"`
	MailTimestamp Int64  `json:"mail_timestamp"`
	MailDate      string `json:"mail_date"`
	MailRead      Int64  `json:"mail_read"`
	MailSize      Int64  `json:"mail_size"`
	ContentType   string `json:"content_type"`
	ReplyTo       string `json:"reply_to"`
	Attachments   Int64  `json:"att"`
	SIDToken      string `json:"sid_token"`
}

// DeleteResponse is returned by del_email.
type DeleteResponse struct {
	DeletedIDs []Int64 `json:"deleted_ids"`
	// Affected is sent by some service versions instead of, or alongside,
	// deleted_ids.
	Affected Int64 `json:"affected"`
}

// ExtendResponse is returned by extend.
type ExtendResponse struct {
	Expired        Bool  `json:"expired"`
	EmailTimestamp Int64 `json:"email_timestamp"`
	Affected       Int64 `json:"affected"`
}
