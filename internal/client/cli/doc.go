// Package cli is the interactive playground console.
//
// The console signs the user in through the start menu (register or
// login), then offers raw SQL mode, where each line goes to the server as
// typed, and block mode, where numbered forms build create/insert/select/
// update/delete requests without writing SQL. Row sets are printed as
// tables; other results print the server's message. Every server call is
// bounded by the configured request timeout.
package cli
