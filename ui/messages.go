package ui

import (
	appmodel "lawtui/model"
)

// Turn type alias so rendering code reads naturally
type Turn = appmodel.Turn

// Message type aliases - these are defined in the model package
type queryResultMsg = appmodel.QueryResultMsg
type queryErrorMsg = appmodel.QueryErrorMsg
type visionResultMsg = appmodel.VisionResultMsg
type progressTickMsg = appmodel.ProgressTickMsg
type markdownRenderedMsg = appmodel.MarkdownRenderedMsg
type historyListMsg = appmodel.HistoryListMsg
type reportOpenedMsg = appmodel.ReportOpenedMsg
type loginResultMsg = appmodel.LoginResultMsg
type subscribeResultMsg = appmodel.SubscribeResultMsg
type notificationsMsg = appmodel.NotificationsMsg
