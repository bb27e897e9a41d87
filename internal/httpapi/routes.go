package httpapi

import (
	"github.com/gin-gonic/gin"
)

// routes wires every REST endpoint the §6 surface names plus /api/ws and
// /metrics. GET /api/health is the only route outside apiKeyAuth.
func (s *Server) routes(r *gin.Engine) {
	r.Use(s.metrics.middleware())

	r.GET("/api/health", s.health)
	r.GET("/metrics", apiKeyAuth(s.cfg.APIKey), s.metricsHandler())
	r.GET("/api/ws", apiKeyAuth(s.cfg.APIKey), s.hub.serveWS)

	api := r.Group("/api")
	api.Use(apiKeyAuth(s.cfg.APIKey))
	api.Use(actionLogMiddleware(s.log))

	api.GET("/profiles", s.listProfiles)
	api.POST("/profiles", s.createProfile)
	api.GET("/profiles/:id", s.getProfile)
	api.PUT("/profiles/:id", s.updateProfile)
	api.DELETE("/profiles/:id", s.deleteProfile)

	api.POST("/launch/:id", s.launch)
	api.POST("/kill/:id", s.kill)
	api.POST("/register-external", s.registerExternal)
	api.GET("/running", s.running)

	api.GET("/action_log", s.getActionLog)
	api.DELETE("/action_log", s.clearActionLog)

	b := api.Group("/browser/:id")

	b.POST("/navigate", s.navigate)
	b.POST("/navigate_wait", s.navigateWait)
	b.GET("/url", s.getURL)
	b.GET("/title", s.getTitle)
	b.POST("/back", s.goBack)
	b.POST("/forward", s.goForward)
	b.POST("/reload", s.reload)
	b.POST("/wait_for_navigation", s.waitForNavigation)
	b.POST("/wait_for_url", s.waitForURL)

	b.POST("/click", s.click)
	b.POST("/hover", s.hover)
	b.POST("/double_click", s.doubleClick)
	b.POST("/right_click", s.rightClick)
	b.POST("/click_at", s.clickAt)
	b.POST("/drag", s.drag)

	b.POST("/type", s.typeText)
	b.POST("/slow_type", s.slowType)
	b.POST("/press_key", s.pressKey)

	b.POST("/select", s.selectOption)
	b.POST("/upload", s.upload)

	b.POST("/scroll", s.scroll)
	b.POST("/scroll_element", s.scrollElement)
	b.POST("/scroll_into_view", s.scrollIntoView)
	b.POST("/wait_for", s.waitFor)
	b.POST("/wait_for_text", s.waitForText)
	b.POST("/wait", s.waitPlain)

	b.GET("/screenshot", s.screenshot)
	b.GET("/screenshot_element", s.screenshotElement)
	b.GET("/page_state", s.pageState)
	b.GET("/ax_tree", s.axTree)
	b.GET("/dom_context", s.domContext)
	b.POST("/extract", s.extract)
	b.GET("/page_text", s.pageText)

	b.POST("/click_ref", s.clickRef)
	b.POST("/type_ref", s.typeRef)
	b.POST("/focus_ref", s.focusRef)

	b.POST("/evaluate", s.evaluate)

	b.GET("/tabs", s.tabs)
	b.POST("/tabs/new", s.newTab)
	b.POST("/tabs/switch", s.switchTab)
	b.POST("/tabs/close", s.closeTab)
	b.POST("/wait_for_new_tab", s.waitForNewTab)

	b.GET("/cookies", s.cookies)
	b.POST("/cookies/set", s.setCookie)
	b.POST("/cookies/clear", s.clearCookies)
	b.GET("/cookies/export", s.exportCookies)
	b.POST("/cookies/import", s.importCookies)

	b.POST("/console/enable", s.enableConsole)
	b.GET("/console", s.consoleLogs)
	b.POST("/console/clear", s.clearConsole)

	b.GET("/network_log", s.networkLog)
	b.POST("/network_log/clear", s.clearNetworkLog)

	b.POST("/intercept/block", s.interceptBlock)
	b.POST("/intercept/mock", s.interceptMock)
	b.POST("/intercept/clear", s.interceptClear)
	b.GET("/intercept", s.interceptRules)
	b.DELETE("/intercept", s.interceptClear)

	b.POST("/dialog", s.dialog)

	b.POST("/emulate", s.emulate)
	b.DELETE("/emulate", s.clearEmulation)

	b.GET("/storage/:type", s.getStorage)
	b.POST("/storage/:type", s.setStorage)
	b.DELETE("/storage/:type", s.clearStorage)

	b.POST("/tap", s.tap)
	b.POST("/swipe", s.swipe)

	b.GET("/pdf", s.pdf)

	b.GET("/frames", s.frames)
	b.POST("/frames/switch", s.switchFrame)
	b.POST("/frames/main", s.framesMain)
}
