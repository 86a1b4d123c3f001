// Package adminauth signs the single admin account in with a bcrypt
// password and issues access tokens for the /admin routes.
package adminauth
