/*
Package client wraps the user webhook endpoint.

# Overview

All four operations share one configured base address:

	Operation   Method  Target                       Body
	FetchUser   GET     base + encodeURIComponent(id) none
	CreateUser  POST    base                          JSON envelope
	UpdateUser  POST    base                          JSON envelope
	DeleteUser  POST    base                          none

Update and delete ignore the id when building the request target: the
endpoint tells them apart from create by the envelope "event" field only.
The id argument is checked up front and ErrUserIDRequired is returned without
touching the network when it is empty.

# Errors

Any status outside 200-299 yields a *RequestError carrying the status and the
response text (or the standard reason phrase when the body cannot be read).
Success bodies must be JSON, except for DeleteUser which turns an empty or
invalid body into {"success":true}.

# Example Usage

	c := client.New("http://127.0.0.1:8000/webhook/employee/", 0)

	res, err := c.FetchUser(ctx, "u42")
	if err != nil {
		var reqErr *client.RequestError
		if errors.As(err, &reqErr) {
			fmt.Println(reqErr.Status)
		}
		return err
	}
	env := types.Normalize(res, time.Now())

# Request Log

When Recorder is set, every completed call (success or failure) is handed to
it. Recording errors are logged and never fail the call.
*/
package client
