// Package guerrillamail provides a Go client for the Guerrilla Mail
// disposable email API.
//
// A Client is bound to one mailbox session through the cookies the service
// issues. Every call sends the caller's declared origin ip and user agent.
//
// Basic usage:
//
//	client, err := guerrillamail.New("203.0.113.7", "my-test-suite/1.0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Acquire a mailbox
//	mb, err := client.GetEmailAddress(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Address:", mb.Address)
//
//	// Wait for an email
//	email, err := client.WaitForEmail(ctx, guerrillamail.WithSubject("Welcome"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Body:", email.Body)
//
// Non-JSON answers from the service surface as *ProtocolError and non-2xx
// statuses as *HTTPError; see the Err* sentinels for errors.Is checks.
package guerrillamail
