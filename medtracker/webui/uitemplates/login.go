package uitemplates

type LogInParams struct {
	ActiveUser ActiveUserParams

	Email     string
	UserError string
}

var logInText = `{{define "title"}}Giriş Yap{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Ana Sayfa</a></li>
<li class="breadcrumb-item active" aria-current="page">Giriş Yap</li>
{{- end}}

{{define "content"}}
<h1>Doktor Girişi</h1>

{{template "usererror" .}}

<form method="POST" action="/login">
  <div class="mb-3">
    <label for="email" class="form-label">E-posta</label>
    <input type="email" name="email" id="email" value="{{.Email}}" class="form-control" required>
  </div>
  <div class="mb-3">
    <label for="password" class="form-label">Şifre</label>
    <input type="password" name="password" id="password" class="form-control" required>
  </div>
  <button type="submit" class="btn btn-primary">Giriş Yap</button>
</form>

<p class="mt-3">Hesabınız yok mu? <a href="/register">Kayıt olun</a></p>
{{end}}
`

var LogInTemplate = page(logInText)
