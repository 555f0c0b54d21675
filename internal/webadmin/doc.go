// Package webadmin provides the BloodLink web console.
//
// # Overview
//
// The console is a server-rendered htmx application with two shells:
//
//   - Admin (/admin/): dashboard, campaigns, blood stock, profile
//   - Staff (/staff/): campaigns and their donation requests, all donation
//     requests, blood unit management, blood unit history, profile
//
// Doctors use the staff shell.
//
// # Architecture
//
// Components:
//
//   - Console: main struct coordinating handlers and templates
//   - Tables: partials under /…/table, paginated by the backend and sorted per page
//   - Dialogs: one #dialog container per page, filled by GET /dialogs/{kind}/{id}
//   - Mutations: run through query.Client so the reads they touch are invalidated
//   - Events: GET /events streams invalidations to every open tab
//
// # Authentication
//
// Sign-in is delegated to an external identity provider. It redirects back to
// /auth/callback?token=… with a signed JWT. The console verifies the token,
// stores a session row holding it and sets an HttpOnly cookie. Every backend
// call made for that session forwards the token as a bearer token.
//
// Mutating requests must carry the CSRF token, either as the csrf_token form
// field or the X-CSRF-Token header that the base layout configures for htmx.
//
// # Responses
//
// A successful mutation answers with an HX-Trigger header carrying a toast,
// the invalidated resources and, for dialogs, a close-dialog event. A failed
// validation answers 422 with the dialog re-rendered and per-field errors.
// A failed backend call answers 502 with an error toast and leaves the
// dialog open.
package webadmin
