// Package terminal runs scripted terminal simulations.
//
// A simulation is a scenario banner plus an ordered list of steps, each a
// command pattern with canned output and an optional response delay. A
// Session drives one simulation through the states
//
//	banner -> idle -> processing -> idle | exited
//
// The banner is revealed with a typewriter effect, commands are resolved
// first-match-wins against the compiled step patterns, and "exit" always
// ends the session regardless of the script.
//
// Sessions never block: every delay is a scheduled callback. Closing a
// session invalidates all of its pending callbacks at once, so a torn down
// session never changes its transcript again.
package terminal
