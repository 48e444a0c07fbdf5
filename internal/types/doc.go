/*
Package types defines the data shared by the client, the views and the
request log.

# User Data

UserRecord is the flat form of a user as held by a form: scalar fields plus
the organization selector. Organizations and Facilities carry the list form
sent on write and returned by the server.

Envelope wraps a record with an event tag and an ISO-8601 UTC timestamp
(TimestampLayout). PayloadEnvelope is the write shape: UserPayload has no
organization selector and always carries organizations and facilities.

# Fetch Results

A fetched body is either enveloped (an object with a truthy "data" member)
or a raw record. ParseFetchResult decides which; Normalize turns either into
an Envelope, tagging raw records "user.fetched".

# Request Log

CallRecord is one completed client call as stored by internal/history.
*/
package types
