package layout

import "strings"

// NavItem is one sidebar entry
type NavItem struct {
	Title string
	Href  string
	Icon  string
}

// NavItems are the main sidebar entries, top to bottom
var NavItems = []NavItem{
	{Title: "Dashboard", Href: "/dashboard", Icon: "layout-dashboard"},
	{Title: "Today's News", Href: "/news", Icon: "newspaper"},
	{Title: "Sources", Href: "/sources", Icon: "shield"},
	{Title: "AI Anchor", Href: "/anchor", Icon: "video"},
	{Title: "Narrative Graph", Href: "/graph", Icon: "network"},
	{Title: "Analytics", Href: "/analytics", Icon: "bar-chart"},
}

// SettingsItem is pinned to the bottom of the sidebar
var SettingsItem = NavItem{Title: "Settings", Href: "/settings", Icon: "settings"}

// IsActive reports whether href is the current page or one of its parents
func IsActive(path, href string) bool {
	return path == href || strings.HasPrefix(path, href+"/")
}

// NavLink is a NavItem resolved against the current path
type NavLink struct {
	NavItem
	Active bool
}

// Nav resolves the sidebar for path; settings is the last link
func Nav(path string) []NavLink {
	links := make([]NavLink, 0, len(NavItems)+1)
	for _, item := range NavItems {
		links = append(links, NavLink{NavItem: item, Active: IsActive(path, item.Href)})
	}
	return append(links, NavLink{NavItem: SettingsItem, Active: IsActive(path, SettingsItem.Href)})
}
