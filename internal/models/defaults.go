package models

// DefaultCourses seeds the catalog of a fresh installation.
var DefaultCourses = []CourseInput{
	{Name: "اللغة الإنجليزية", NameEn: "English", Description: "دورات اللغة الإنجليزية", Icon: "🇬🇧"},
	{Name: "اللغة الألمانية", NameEn: "German", Description: "دورات اللغة الألمانية", Icon: "🇩🇪"},
	{Name: "ICDL", NameEn: "ICDL", Description: "الرخصة الدولية لقيادة الحاسوب", Icon: "💻"},
	{Name: "فوتوشوب", NameEn: "Photoshop", Description: "تصميم الجرافيك", Icon: "🎨"},
	{Name: "الذكاء الاصطناعي", NameEn: "AI", Description: "دورات الذكاء الاصطناعي", Icon: "🤖"},
	{Name: "البرمجة", NameEn: "Programming", Description: "HTML + CSS + JavaScript", Icon: "👨‍💻"},
	{Name: "تحرير الفيديو", NameEn: "Video Editing", Description: "Premiere Pro", Icon: "🎬"},
	{Name: "موشن جرافيك", NameEn: "Motion Graphics", Description: "After Effects", Icon: "✨"},
	{Name: "كانفا", NameEn: "Canva", Description: "Canva + Whiteboard", Icon: "🖼️"},
}

// DefaultGroupName is used when a legacy group record has no name.
const DefaultGroupName = "مجموعة"
