package model

// DefaultCategories 行业类别的默认列表
var DefaultCategories = []string{
	"AI coding assistants",
	"AI writing tools",
	"Analytics & BI",
	"Customer support software",
	"Cybersecurity",
	"Developer tools",
	"E-commerce platforms",
	"EdTech",
	"FinTech",
	"HealthTech",
	"HR & recruiting",
	"Marketing automation",
	"Productivity & collaboration",
	"Project management",
	"Social media tools",
	"Video & audio editing",
}
