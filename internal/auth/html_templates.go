package auth

import (
	"fmt"
	"html"
)

// authSuccessHTML is shown in the browser after the authorization server
// redirects back with a code. The CLI picks the code up from the callback, so
// the user only needs to close the window.
const authSuccessHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Authorization Successful</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            min-height: 100vh;
            margin: 0;
            background: #f3f4f6;
        }
        .container {
            text-align: center;
            background: white;
            padding: 2.5rem;
            border-radius: 12px;
            box-shadow: 0 10px 25px rgba(0,0,0,0.1);
            max-width: 480px;
        }
        h1 { color: #1f2937; font-size: 1.5rem; }
        p { color: #6b7280; line-height: 1.5; }
        .icon { font-size: 2.5rem; color: #10b981; }
    </style>
</head>
<body>
    <div class="container">
        <div class="icon">&#10003;</div>
        <h1>Authorization Successful</h1>
        <p>You can close this window and return to the CLI.</p>
    </div>
</body>
</html>`

// authErrorHTML is the template for server-reported authorization failures.
const authErrorHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Authorization Failed</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            min-height: 100vh;
            margin: 0;
            background: #f3f4f6;
        }
        .container {
            text-align: center;
            background: white;
            padding: 2.5rem;
            border-radius: 12px;
            box-shadow: 0 10px 25px rgba(0,0,0,0.1);
            max-width: 480px;
        }
        h1 { color: #b91c1c; font-size: 1.5rem; }
        p { color: #6b7280; line-height: 1.5; }
        code { background: #f9fafb; padding: 0.15rem 0.4rem; border-radius: 4px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Authorization Failed</h1>
        <p>Error: <code>%s</code></p>
        <p>%s</p>
    </div>
</body>
</html>`

// authInvalidHTML is shown for callback requests carrying neither a code nor
// an error parameter.
const authInvalidHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Invalid Request</title>
</head>
<body>
    <h2>Invalid Request</h2>
    <p>No authorization code received.</p>
</body>
</html>`

// renderAuthErrorHTML fills the error page template with the server-reported
// error code and description.
func renderAuthErrorHTML(errCode, errDescription string) string {
	if errDescription == "" {
		errDescription = "Unknown error"
	}
	return fmt.Sprintf(authErrorHTML, html.EscapeString(errCode), html.EscapeString(errDescription))
}
