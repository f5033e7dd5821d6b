package domain

// ProjectType is the kind of project picked on the first wizard step.
type ProjectType string

const (
	ProjectWebsite   ProjectType = "website"
	ProjectEcommerce ProjectType = "ecommerce"
	ProjectWebApp    ProjectType = "web-app"
	ProjectMobileApp ProjectType = "mobile-app"
	ProjectDashboard ProjectType = "dashboard"
	ProjectRedesign  ProjectType = "redesign"
)

// ProjectTypes lists the selectable project types in display order.
var ProjectTypes = []ProjectType{
	ProjectWebsite,
	ProjectEcommerce,
	ProjectWebApp,
	ProjectMobileApp,
	ProjectDashboard,
	ProjectRedesign,
}

// Valid reports whether t is one of the known project types.
func (t ProjectType) Valid() bool {
	_, ok := featureCatalog[t]
	return ok
}

// FeatureOption is one selectable feature tag of a catalog entry.
type FeatureOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var featureCatalog = map[ProjectType][]FeatureOption{
	ProjectWebsite: {
		{ID: "responsive", Label: "Responsive Design"},
		{ID: "cms", Label: "Content Management System"},
		{ID: "seo", Label: "SEO Optimization"},
		{ID: "blog", Label: "Blog/News Section"},
		{ID: "contact", Label: "Contact Forms"},
		{ID: "analytics", Label: "Analytics Integration"},
		{ID: "multilingual", Label: "Multilingual Support"},
		{ID: "social", Label: "Social Media Integration"},
	},
	ProjectEcommerce: {
		{ID: "product-management", Label: "Product Management"},
		{ID: "shopping-cart", Label: "Shopping Cart & Checkout"},
		{ID: "payment-gateway", Label: "Payment Gateway Integration"},
		{ID: "inventory", Label: "Inventory Management"},
		{ID: "order-management", Label: "Order Management"},
		{ID: "customer-accounts", Label: "Customer Accounts"},
		{ID: "product-search", Label: "Advanced Search & Filtering"},
		{ID: "recommendations", Label: "Product Recommendations"},
		{ID: "analytics", Label: "Sales Analytics Dashboard"},
	},
	ProjectWebApp: {
		{ID: "user-auth", Label: "User Authentication"},
		{ID: "database", Label: "Database Integration"},
		{ID: "apis", Label: "Third-party API Integration"},
		{ID: "dashboard", Label: "Admin Dashboard"},
		{ID: "reporting", Label: "Reporting Features"},
		{ID: "notifications", Label: "Real-time Notifications"},
		{ID: "file-upload", Label: "File Upload/Management"},
		{ID: "subscription", Label: "Subscription Management"},
	},
	ProjectMobileApp: {
		{ID: "ios", Label: "iOS Development"},
		{ID: "android", Label: "Android Development"},
		{ID: "cross-platform", Label: "Cross-platform (React Native/Flutter)"},
		{ID: "offline", Label: "Offline Functionality"},
		{ID: "push", Label: "Push Notifications"},
		{ID: "geolocation", Label: "Geolocation Features"},
		{ID: "camera", Label: "Camera/Media Integration"},
		{ID: "in-app-purchase", Label: "In-app Purchases"},
	},
	ProjectDashboard: {
		{ID: "data-visualization", Label: "Data Visualization"},
		{ID: "user-management", Label: "User Management"},
		{ID: "reporting", Label: "Reporting Tools"},
		{ID: "export", Label: "Data Export (CSV/Excel)"},
		{ID: "alerts", Label: "Alerts & Notifications"},
		{ID: "api-integration", Label: "API Integrations"},
		{ID: "real-time", Label: "Real-time Updates"},
		{ID: "filtering", Label: "Advanced Filtering & Sorting"},
	},
	ProjectRedesign: {
		{ID: "ui-ux", Label: "UI/UX Improvements"},
		{ID: "performance", Label: "Performance Optimization"},
		{ID: "responsive", Label: "Mobile Responsiveness"},
		{ID: "seo", Label: "SEO Optimization"},
		{ID: "content", Label: "Content Restructuring"},
		{ID: "branding", Label: "Brand Alignment"},
		{ID: "analytics", Label: "Analytics Integration"},
		{ID: "accessibility", Label: "Accessibility Improvements"},
	},
}

// CatalogFor returns a copy of the feature options offered for t, or nil for
// an unknown type.
func CatalogFor(t ProjectType) []FeatureOption {
	opts, ok := featureCatalog[t]
	if !ok {
		return nil
	}
	out := make([]FeatureOption, len(opts))
	copy(out, opts)
	return out
}

// HasFeature reports whether id is a feature tag of t's catalog entry.
func (t ProjectType) HasFeature(id string) bool {
	for _, opt := range featureCatalog[t] {
		if opt.ID == id {
			return true
		}
	}
	return false
}

// Timelines are the accepted delivery timeline answers.
var Timelines = []string{
	"Less than 1 month",
	"1-2 months",
	"3-6 months",
	"6+ months",
	"Not sure yet",
}

// BudgetRanges are the accepted budget answers.
var BudgetRanges = []string{
	"Under $5,000",
	"$5,000 - $10,000",
	"$10,000 - $25,000",
	"$25,000 - $50,000",
	"$50,000+",
	"Not sure yet",
}

// PriorityRanks are the ranks a priority can take, 1 being the most important.
var PriorityRanks = []string{"1", "2", "3"}
