// Package delivery polls a mailbox for new messages.
//
// A [Poller] owns the check_email cursor: each [Poller.Poll] sends the
// highest mail_id seen so far and only returns messages above it. Between
// polls, [Backoff] stretches the interval from 2s up to 30s while nothing
// arrives and snaps back once something does.
//
//	p := delivery.NewPoller(delivery.Config{Checker: apiClient})
//	err := p.Run(ctx, func(msgs []api.MailSummary) (bool, error) {
//	    for _, m := range msgs {
//	        fmt.Println(m.MailSubject)
//	    }
//	    return false, nil
//	})
//
// Polling runs in the caller's goroutine; nothing here starts background
// work. A Poller is safe for concurrent use, though concurrent Polls may
// return overlapping messages.
package delivery
