package uitemplates

type RegisterParams struct {
	ActiveUser ActiveUserParams

	Name      string
	Email     string
	UserError string
}

var registerText = `{{define "title"}}Kayıt Ol{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Ana Sayfa</a></li>
<li class="breadcrumb-item active" aria-current="page">Kayıt Ol</li>
{{- end}}

{{define "content"}}
<h1>Kayıt Ol</h1>

{{template "usererror" .}}

<form method="POST" action="/register">
  <div class="mb-3">
    <label for="name" class="form-label">Ad Soyad</label>
    <input type="text" name="name" id="name" value="{{.Name}}" class="form-control" required>
  </div>
  <div class="mb-3">
    <label for="email" class="form-label">E-posta</label>
    <input type="email" name="email" id="email" value="{{.Email}}" class="form-control" required>
  </div>
  <div class="mb-3">
    <label for="password" class="form-label">Şifre</label>
    <input type="password" name="password" id="password" class="form-control" minlength="6" required>
  </div>
  <button type="submit" class="btn btn-primary">Kayıt Ol</button>
</form>

<p class="mt-3">Zaten hesabınız var mı? <a href="/login">Giriş yapın</a></p>
{{end}}
`

var RegisterTemplate = page(registerText)
