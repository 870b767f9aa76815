package handlers

import "strings"

// Flash is the short message the UI shows after an action.
type Flash struct {
	Kind string `json:"kind"` // "success", "error", "info" or "warning"
	Text string `json:"text"`
}

var okText = map[string]string{
	"logged_in":       "تم تسجيل الدخول بنجاح",
	"course_added":    "تم إضافة الكورس",
	"course_updated":  "تم تحديث الكورس",
	"course_deleted":  "تم حذف الكورس",
	"group_added":     "تم إضافة المجموعة",
	"group_updated":   "تم تحديث المجموعة",
	"group_deleted":   "تم حذف المجموعة",
	"student_added":   "تم إضافة الطالب بنجاح",
	"student_updated": "تم تحديث بيانات الطالب",
	"student_deleted": "تم حذف الطالب",
	"session_added":   "تم إنشاء الجلسة",
	"attended":        "تم تسجيل حضورك بنجاح!",
	"registered":      "تم تسجيلك وتسجيل حضورك بنجاح!",
	"saved":           "تم الحفظ",
	"deleted":         "تم الحذف",
	"student_moved":   "تم نقل الطالب",
	"attendance_set":  "تم تسجيل الحضور",
}

var errText = map[string]string{
	"bad_login":     "البريد الإلكتروني أو كلمة المرور غير صحيحة",
	"phone_taken":   "رقم الهاتف مسجل مسبقاً",
	"invalid_token": "رابط الحضور غير صالح أو منتهي",
	"already":       "تم تسجيل حضورك مسبقاً لهذه الجلسة",
	"contact_admin": "يرجى التواصل مع المسؤول لتسجيل حضورك",
	"not_found":     "العنصر غير موجود",
	"bad_step":      "يرجى إعادة المحاولة من البداية",
	"over_capacity": "المجموعة تجاوزت الحد الأقصى للطلاب",
}

var infoKeys = map[string]bool{"contact_admin": true, "already": true}

// MakeFlash looks code up in the catalogs. An unknown code falls back to
// text, so handlers can pass through a message of their own.
func MakeFlash(code, text string) *Flash {
	key := strings.ToLower(strings.TrimSpace(code))
	if t, ok := okText[key]; ok {
		return &Flash{Kind: "success", Text: t}
	}
	if t, ok := errText[key]; ok {
		kind := "error"
		switch {
		case infoKeys[key]:
			kind = "info"
		case key == "over_capacity":
			kind = "warning"
		}
		return &Flash{Kind: kind, Text: t}
	}
	if text != "" {
		return &Flash{Kind: "error", Text: text}
	}
	return nil
}
