/*
Package shell is the desktop's orchestrator.

A Controller owns the window manager, the single terminal simulation and
the overlay flags (AI chat, command palette). Every handler is executed on
a Loop, one goroutine that serializes all transitions; timer callbacks from
the running simulation are posted onto the same loop. Sound cues and
notification banners are side effects delivered through the SoundPlayer
and Notifier collaborators, and every change is published on the Bus.

Only one simulation runs at a time. A launch while one is active fails
with ErrSimulationActive; the caller closes the running one first.
*/
package shell
