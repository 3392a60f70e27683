/*
Package tenantsdk is a client for the tenantry account and invitation service.

# Client and Session

Client covers the public endpoints:

	client := tenantsdk.NewClient("https://tenantry.example.com")

	health, err := client.GetLiveness(ctx)
	res, err := client.ValidateInvitation(ctx, tenantsdk.ValidateInvitationRequest{
		Token: token,
		Email: "new.member@example.com",
	})

Session attaches a bearer identity token issued by the platform's identity
provider. It does not refresh the token; create a new Session when it expires.

	session := client.WithBearer(idToken)

	acct, err := session.CreateAccount(ctx, tenantsdk.CreateAccountRequest{Name: "Acme"})
	inv, err := session.IssueInvitation(ctx, acct.ID, tenantsdk.IssueInvitationRequest{
		Email: "agency@example.com",
		Role:  "agency",
	})
	res, err := session.AcceptInvitation(ctx, tenantsdk.AcceptInvitationRequest{
		Token: inv.Token,
		Email: "agency@example.com",
	})

# Errors

Non-2xx responses are returned as *APIError. Its Code is one of the Code*
constants, so callers can branch without parsing text:

	if tenantsdk.IsCode(err, tenantsdk.CodeExpired) {
		// ask the issuer for a fresh invitation
	}

Only CodeStoreUnavailable is worth retrying.
*/
package tenantsdk
