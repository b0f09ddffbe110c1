package i18n

// ZhCNMessages 简体中文消息目录
// ZhCNMessages Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	// TUI - 页面
	"screen.dashboard": "仪表盘",
	"screen.items":     "条目",

	// TUI - 状态栏
	"status.ready":   "就绪",
	"status.loading": "加载中...",

	// TUI - 快捷键
	"keys.tab":    "ctrl+t 切换页面",
	"keys.quit":   "ctrl+c 退出",
	"keys.gmail":  "ctrl+g 连接 Gmail",
	"keys.disc":   "d 断开连接",
	"keys.page":   "pgup/pgdn 翻页",
	"keys.filter": "←/→ 切换",
	"keys.open":   "enter 详情",
	"keys.back":   "esc 返回",
	"keys.focus":  "tab 焦点",
	"keys.reload": "ctrl+r 刷新",

	// 仪表盘
	"dash.welcome":      "欢迎回来，%s！",
	"dash.intro":        "在这里管理集成并查看已连接的账户。",
	"dash.user_default": "用户",

	// 消息计数
	"count.loading": "加载中...",
	"count.none":    "暂无消息",
	"count.one":     "已处理 %s 条消息",
	"count.many":    "已处理 %s 条消息",

	// Telegram
	"telegram.title":                "Telegram 集成",
	"telegram.subtitle":             "监控并收集 Telegram 消息",
	"telegram.connect_heading":      "连接 Telegram 账户",
	"telegram.connect_intro":        "连接 Telegram 账户后，将自动收集并分类你的所有消息。",
	"telegram.connected_banner":     "Telegram 账户已连接，正在监控消息",
	"telegram.connected_as":         "已连接：%s",
	"telegram.code_banner":          "请输入发送到手机的验证码",
	"telegram.phone_label":          "手机号",
	"telegram.code_label":           "验证码",
	"telegram.password_label":       "两步验证密码（如已启用）",
	"telegram.password_placeholder": "未启用两步验证请留空",
	"telegram.send_code":            "发送验证码",
	"telegram.verify":               "验证",
	"telegram.disconnect":           "断开 Telegram",
	"telegram.pending":              "处理中...",
	"telegram.code_sent":            "验证码已发送到你的手机",
	"telegram.connected":            "已成功连接 Telegram！",
	"telegram.disconnected":         "已断开 Telegram",
	"telegram.start_failed":         "发起认证失败",
	"telegram.verify_failed":        "验证码校验失败",
	"telegram.disconnect_failed":    "断开连接失败",
	"telegram.status_connected":     "已连接",
	"telegram.status_not_connected": "未连接",

	// Gmail
	"gmail.title":          "Gmail 集成",
	"gmail.subtitle":       "连接 Gmail 账户以处理邮件",
	"gmail.intro":          "连接 Gmail 账户后，将与 Telegram 消息一起自动处理和分析你的邮件。",
	"gmail.connect":        "连接 Gmail 账户",
	"gmail.connecting":     "连接中...",
	"gmail.failed":         "OAuth 授权失败",
	"gmail.opened":         "请在浏览器中继续授权",
	"gmail.browser_failed": "无法打开浏览器，请访问 %s",

	// 条目
	"items.title":              "条目",
	"items.empty":              "没有找到条目",
	"items.search_label":       "搜索",
	"items.search":             "搜索...",
	"items.category":           "分类",
	"items.priority":           "优先级",
	"items.source":             "来源",
	"items.message_type":       "消息类型",
	"items.contact":            "联系人",
	"items.any":                "全部",
	"items.col.title":          "标题",
	"items.col.description":    "描述",
	"items.col.classification": "分类",
	"items.col.contact":        "联系人",
	"items.col.source":         "来源",
	"items.col.created":        "创建时间",
	"items.no_classification":  "未分类",
	"items.untitled":           "无标题",
	"items.no_description":     "无描述",
	"items.unknown_source":     "未知",
	"items.no_contact":         "无联系人",
	"items.page":               "第 %d / %d 页",
	"items.action_required":    "需要处理",
	"items.load_failed":        "加载条目失败：%s",

	"category.meeting":     "会议",
	"category.task":        "任务",
	"category.information": "信息",
	"category.thought":     "想法",
	"priority.low":         "低",
	"priority.medium":      "中",
	"priority.high":        "高",

	// CLI
	"cli.phone_prompt":    "手机号：",
	"cli.code_prompt":     "验证码：",
	"cli.password_prompt": "两步验证密码（回车跳过）：",
	"cli.aborted":         "已取消",
	"cli.user":            "用户",
	"cli.email":           "邮箱",
	"cli.phone":           "手机号",
	"cli.username":        "用户名",
	"cli.telegram":        "Telegram",
	"cli.total":           "总数",
	"cli.token_prompt":    "访问令牌：",
	"cli.token_saved":     "令牌已写入 %s",
	"cli.config_written":  "项目配置位于 %s",
	"cli.already":         "Telegram 已连接",

	// 错误
	"error.config":  "配置错误：%s",
	"error.storage": "存储错误：%s",
}
