package errutil

var (
	ErrHTTPRequest         = NewInternalError("http request error")
	ErrJSONDecode          = NewInternalError("json decode error")
	ErrJSONEncode          = NewInternalError("json encode error")
	ErrTimeParse           = NewInternalError("time parse error")
	ErrFeedParse           = NewInternalError("feed parse error")
	ErrFetchNotOK          = NewInternalError("http fetch status code not ok")
	ErrSourceNotConfigured = NewInternalError("source credentials not configured")
	ErrQuotaExceeded       = NewInternalError("ai api quota exceeded")
	ErrAnalyze             = NewInternalError("ai analyze error")
	ErrDatabaseOpen        = NewInternalError("database open error")
	ErrDatabaseQuery       = NewInternalError("database query error")
	ErrDatabaseScan        = NewInternalError("database scan error")
	ErrSubscriberStore     = NewInternalError("subscriber store error")
	ErrInvalidEmail        = NewInternalError("invalid email address")
	ErrMailNotConfigured   = NewInternalError("email not configured")
	ErrMailSend            = NewInternalError("mail send error")
	ErrWebhookSend         = NewInternalError("webhook send error")
	ErrScheduler           = NewInternalError("scheduler error")
	ErrTemplate            = NewInternalError("template render error")
	// not classifiable
	ErrInternal = NewInternalError("internal something error")
)
