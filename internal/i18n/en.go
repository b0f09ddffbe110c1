package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// UI - Screens
	"screen.dashboard": "Dashboard",
	"screen.items":     "Items",

	// UI - Status bar
	"status.ready":   "Ready",
	"status.loading": "Loading...",
	"status.api":     "API",

	// UI - Keybindings (TUI)
	"keys.tab":    "ctrl+t switch screen",
	"keys.quit":   "ctrl+c quit",
	"keys.gmail":  "ctrl+g connect gmail",
	"keys.disc":   "d disconnect",
	"keys.page":   "pgup/pgdn page",
	"keys.filter": "←/→ cycle",
	"keys.open":   "enter details",
	"keys.back":   "esc back",
	"keys.focus":  "tab focus",
	"keys.reload": "ctrl+r refresh",

	// Dashboard
	"dash.welcome":      "Welcome back, %s!",
	"dash.intro":        "Manage your integrations and monitor your connected accounts from here.",
	"dash.user_default": "User",

	// Message count
	"count.loading": "Loading...",
	"count.none":    "No messages yet",
	"count.one":     "%s Message Processed",
	"count.many":    "%s Messages Processed",

	// Telegram
	"telegram.title":                "Telegram Integration",
	"telegram.subtitle":             "Monitor and capture Telegram messages",
	"telegram.connect_heading":      "Connect Telegram Account",
	"telegram.connect_intro":        "Connect your Telegram account to automatically capture and classify all your messages.",
	"telegram.connected_banner":     "Your Telegram account is connected and monitoring messages",
	"telegram.connected_as":         "Connected as %s",
	"telegram.code_banner":          "Please enter the verification code sent to your phone",
	"telegram.phone_label":          "Phone Number",
	"telegram.phone_placeholder":    "+1234567890",
	"telegram.code_label":           "Verification Code",
	"telegram.code_placeholder":     "12345",
	"telegram.password_label":       "2FA Password (if enabled)",
	"telegram.password_placeholder": "Leave empty if not using 2FA",
	"telegram.send_code":            "Send Verification Code",
	"telegram.verify":               "Verify Code",
	"telegram.disconnect":           "Disconnect Telegram",
	"telegram.pending":              "Working...",
	"telegram.code_sent":            "Authentication code sent to your phone",
	"telegram.connected":            "Successfully connected to Telegram!",
	"telegram.disconnected":         "Disconnected from Telegram",
	"telegram.start_failed":         "Failed to start authentication",
	"telegram.verify_failed":        "Failed to verify code",
	"telegram.disconnect_failed":    "Failed to disconnect",
	"telegram.status_connected":     "connected",
	"telegram.status_not_connected": "not connected",

	// Gmail
	"gmail.title":          "Gmail Integration",
	"gmail.subtitle":       "Connect your Gmail account for email processing",
	"gmail.intro":          "Connect your Gmail account to automatically process and analyze your emails alongside your Telegram messages.",
	"gmail.connect":        "Connect Gmail Account",
	"gmail.connecting":     "Connecting...",
	"gmail.failed":         "OAuth failed",
	"gmail.opened":         "Continue the authorization in your browser",
	"gmail.browser_failed": "Could not open a browser, visit %s",

	// Items
	"items.title":              "Items",
	"items.empty":              "No items found",
	"items.search_label":       "Search",
	"items.search":             "Search...",
	"items.category":           "Category",
	"items.priority":           "Priority",
	"items.source":             "Source",
	"items.message_type":       "Message type",
	"items.contact":            "Contact name",
	"items.any":                "Any",
	"items.col.title":          "Title",
	"items.col.description":    "Description",
	"items.col.classification": "Classification",
	"items.col.contact":        "Contacts",
	"items.col.source":         "Source",
	"items.col.created":        "Created",
	"items.no_classification":  "No classification",
	"items.untitled":           "Untitled",
	"items.no_description":     "No description",
	"items.unknown_source":     "Unknown",
	"items.no_contact":         "No contact",
	"items.page":               "Page %d of %d",
	"items.action_required":    "Action required",
	"items.load_failed":        "Failed to load items: %s",

	// Categories / priorities
	"category.meeting":     "Meeting",
	"category.task":        "Task",
	"category.information": "Information",
	"category.thought":     "Thought",
	"priority.low":         "Low",
	"priority.medium":      "Medium",
	"priority.high":        "High",

	// CLI
	"cli.phone_prompt":    "Phone number: ",
	"cli.code_prompt":     "Verification code: ",
	"cli.password_prompt": "2FA password (enter to skip): ",
	"cli.aborted":         "Aborted",
	"cli.user":            "User",
	"cli.email":           "Email",
	"cli.telegram":        "Telegram",
	"cli.phone":           "Phone",
	"cli.username":        "Username",
	"cli.total":           "Total",
	"cli.token_prompt":    "Access token: ",
	"cli.token_saved":     "Token saved to %s",
	"cli.config_written":  "Project config at %s",
	"cli.already":         "Telegram is already connected",

	// Errors
	"error.config":  "Config error: %s",
	"error.storage": "Storage error: %s",
}
