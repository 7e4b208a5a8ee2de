// Package window tracks the desktop's open windows and their stacking.
//
// Each window is a Record with a monotonically assigned id, the view it
// hosts and a stack order. Higher stack orders are drawn on top; the
// maximum identifies the focused window. Opening or focusing a window
// always assigns it max+1, and closing never renumbers the others, so the
// final layout is a pure function of the operation sequence.
//
// Example:
//
//	wm := window.NewManager().OnChange(render)
//	dash, _ := wm.Open(window.ViewDashboard)
//	chat, _ := wm.Open(window.ViewChat)
//	wm.Focus(dash.ID) // dashboard on top again
//	wm.Close(chat.ID)
package window
