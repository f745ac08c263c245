package usecase

import (
	"fmt"
	"strings"
)

const (
	LangArabic  = "ar"
	LangEnglish = "en"
)

const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeLeadDuplicateToday    = "LEAD_DUPLICATE_TODAY"
	CodeLeadNotFound          = "LEAD_NOT_FOUND"
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodeLeadAlreadyAssigned   = "LEAD_ALREADY_ASSIGNED"
	CodeCountryNotAllowed     = "COUNTRY_NOT_ALLOWED"
	CodeMaxLeadsReached       = "MAX_LEADS_REACHED"
	CodeDailyLimitReached     = "DAILY_LIMIT_REACHED"
	CodeStatusLocked          = "STATUS_LOCKED"
	CodeNotLeadOwner          = "NOT_LEAD_OWNER"
	CodeStatusConflict        = "STATUS_CONFLICT"
	CodeInvalidStatus         = "INVALID_STATUS"
	CodeForbidden             = "FORBIDDEN"
	CodeInvalidAmount         = "INVALID_AMOUNT"
	CodePendingAmountExceeded = "PENDING_AMOUNT_EXCEEDED"
	CodePaymentNotFound       = "PAYMENT_NOT_FOUND"
	CodeInvoiceNotFound       = "INVOICE_NOT_FOUND"
	CodeSessionNotFound       = "SESSION_NOT_FOUND"
	CodeContractNotFound      = "CONTRACT_NOT_FOUND"
	CodeNotificationNotFound  = "NOTIFICATION_NOT_FOUND"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeAccountBlocked        = "ACCOUNT_BLOCKED"
	CodePdfFailed             = "PDF_FAILED"
	CodeInvalidBody           = "INVALID_BODY"
	CodeTooManyRequests       = "TOO_MANY_REQUESTS"

	MsgLeadCreated       = "LEAD_CREATED"
	MsgLeadAssigned      = "LEAD_ASSIGNED"
	MsgLeadsBulkAssigned = "LEADS_BULK_ASSIGNED"
	MsgStatusUpdated     = "STATUS_UPDATED"
	MsgLeadOnHold        = "LEAD_ON_HOLD"
	MsgPaymentProcessed  = "PAYMENT_PROCESSED"
	MsgPaymentsCreated   = "PAYMENTS_CREATED"
	MsgNoteAdded         = "NOTE_ADDED"
	MsgPdfGenerated      = "PDF_GENERATED"
	MsgOK                = "OK"
)

var messages = map[string]map[string]string{
	CodeValidation: {
		LangArabic:  "البيانات المدخلة غير صحيحة: %s",
		LangEnglish: "Invalid input: %s",
	},
	CodeLeadDuplicateToday: {
		LangArabic:  "لقد قمت بإرسال طلب اليوم بالفعل، سيتواصل معك فريقنا قريباً",
		LangEnglish: "You have already submitted a request today. Our team will contact you soon",
	},
	CodeLeadNotFound: {
		LangArabic:  "العميل المحتمل غير موجود",
		LangEnglish: "Lead not found",
	},
	CodeUserNotFound: {
		LangArabic:  "المستخدم غير موجود",
		LangEnglish: "User not found",
	},
	CodeLeadAlreadyAssigned: {
		LangArabic:  "تم تعيين هذا العميل لموظف آخر بالفعل",
		LangEnglish: "This lead has already been assigned",
	},
	CodeCountryNotAllowed: {
		LangArabic:  "غير مسموح لك باستلام عملاء من هذه الدولة",
		LangEnglish: "You are not allowed to take leads from this country",
	},
	CodeMaxLeadsReached: {
		LangArabic:  "لقد وصلت إلى الحد الأقصى من العملاء النشطين (%d)",
		LangEnglish: "You have reached the maximum number of active leads (%d)",
	},
	CodeDailyLimitReached: {
		LangArabic:  "لقد وصلت إلى الحد اليومي لاستلام العملاء (%d)",
		LangEnglish: "You have reached your daily lead limit (%d)",
	},
	CodeStatusLocked: {
		LangArabic:  "لا يمكن تغيير حالة هذا العميل إلا من قبل المدير",
		LangEnglish: "Only an admin can change the status of this lead",
	},
	CodeNotLeadOwner: {
		LangArabic:  "هذا العميل غير معين لك",
		LangEnglish: "This lead is not assigned to you",
	},
	CodeStatusConflict: {
		LangArabic:  "تم تعديل حالة العميل من قبل مستخدم آخر، يرجى التحديث والمحاولة مرة أخرى",
		LangEnglish: "The lead was changed by someone else, refresh and try again",
	},
	CodeInvalidStatus: {
		LangArabic:  "الحالة غير صالحة",
		LangEnglish: "Invalid status",
	},
	CodeForbidden: {
		LangArabic:  "ليس لديك صلاحية لتنفيذ هذا الإجراء",
		LangEnglish: "You are not allowed to perform this action",
	},
	CodeInvalidAmount: {
		LangArabic:  "يجب أن يكون المبلغ أكبر من صفر",
		LangEnglish: "Amount must be greater than zero",
	},
	CodePendingAmountExceeded: {
		LangArabic:  "المبلغ يتجاوز المبلغ المتبقي (%s)",
		LangEnglish: "Amount exceeds the pending amount (%s)",
	},
	CodePaymentNotFound: {
		LangArabic:  "الدفعة غير موجودة",
		LangEnglish: "Payment not found",
	},
	CodeInvoiceNotFound: {
		LangArabic:  "الفاتورة غير موجودة",
		LangEnglish: "Invoice not found",
	},
	CodeSessionNotFound: {
		LangArabic:  "الجلسة غير موجودة",
		LangEnglish: "Session not found",
	},
	CodeContractNotFound: {
		LangArabic:  "العقد غير موجود",
		LangEnglish: "Contract not found",
	},
	CodeNotificationNotFound: {
		LangArabic:  "الإشعار غير موجود",
		LangEnglish: "Notification not found",
	},
	CodeInvalidCredentials: {
		LangArabic:  "البريد الإلكتروني أو كلمة المرور غير صحيحة",
		LangEnglish: "Invalid email or password",
	},
	CodeAccountBlocked: {
		LangArabic:  "تم حظر حسابك",
		LangEnglish: "Your account has been blocked",
	},
	CodePdfFailed: {
		LangArabic:  "حدث خطأ أثناء إنشاء ملف PDF",
		LangEnglish: "Failed to generate the PDF",
	},
	CodeInvalidBody: {
		LangArabic:  "صيغة الطلب غير صحيحة",
		LangEnglish: "Invalid request body",
	},
	CodeTooManyRequests: {
		LangArabic:  "عدد كبير من الطلبات، يرجى المحاولة لاحقاً",
		LangEnglish: "Too many requests, please try again later",
	},
	MsgLeadCreated: {
		LangArabic:  "تم استلام طلبك بنجاح",
		LangEnglish: "Your request has been received successfully",
	},
	MsgLeadAssigned: {
		LangArabic:  "تم تعيين العميل بنجاح",
		LangEnglish: "Lead assigned successfully",
	},
	MsgLeadsBulkAssigned: {
		LangArabic:  "تم تعيين %d عميل بنجاح",
		LangEnglish: "%d leads assigned successfully",
	},
	MsgStatusUpdated: {
		LangArabic:  "تم تحديث الحالة بنجاح",
		LangEnglish: "Status updated successfully",
	},
	MsgLeadOnHold: {
		LangArabic:  "تم تحويل العميل بنجاح",
		LangEnglish: "Lead released successfully",
	},
	MsgPaymentProcessed: {
		LangArabic:  "تمت معالجة الدفعة بنجاح",
		LangEnglish: "Payment processed successfully",
	},
	MsgPaymentsCreated: {
		LangArabic:  "تم إنشاء الدفعات بنجاح",
		LangEnglish: "Payments created successfully",
	},
	MsgNoteAdded: {
		LangArabic:  "تمت إضافة الملاحظة",
		LangEnglish: "Note added",
	},
	MsgPdfGenerated: {
		LangArabic:  "تم إنشاء ملف PDF بنجاح",
		LangEnglish: "PDF generated successfully",
	},
	MsgOK: {
		LangArabic:  "تمت العملية بنجاح",
		LangEnglish: "Done",
	},
}

// NormalizeLang falls back to Arabic for anything that is not "en".
func NormalizeLang(lng string) string {
	if strings.EqualFold(strings.TrimSpace(lng), LangEnglish) {
		return LangEnglish
	}
	return LangArabic
}

// Message returns the text for key in lng, formatted with args.
func Message(lng, key string, args ...any) string {
	texts, ok := messages[key]
	if !ok {
		return key
	}
	tmpl := texts[NormalizeLang(lng)]
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
