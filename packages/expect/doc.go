// Package expect wires the page matchers into Go tests.
//
//	func TestLogin(t *testing.T) {
//		page := expect.Default().Page(t, pw)
//		...
//		expect.Expect(t, page).ToMatchText("#greeting", "Welcome back")
//		expect.Expect(t, page).Not().ToBeChecked("#remember")
//	}
//
// Every matcher is polled with the configured retry policy until it passes
// or the budget runs out; only then is the failure reported on t.
package expect
