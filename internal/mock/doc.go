/*
Package mock serves a stand-in for the employee webhook.

GET base+id returns the stored user (as an envelope, or bare when seeded
with raw: true). POST base with a user.created or user.updated envelope
stores data under data.user_id; creates without one get a generated id.
An empty POST deletes the user fetched or written most recently, since
delete requests carry no id.

Static routes from the config file are matched first (exact, prefix or
regex paths) and can simulate failures or slow responses:

	port: 8000
	users:
	  - data: {user_id: u1, username: alice, role: doctor}
	routes:
	  - name: slow fetch
	    method: GET
	    path: /webhook/employee/u1
	    status: 503
	    delay: 2000
*/
package mock
