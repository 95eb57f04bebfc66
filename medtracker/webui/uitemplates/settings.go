package uitemplates

type SettingsParams struct {
	ActiveUser ActiveUserParams

	DisplayName string
	Email       string

	Saved     bool
	UserError string
}

var settingsText = `{{define "title"}}Ayarlar{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/yonetim">Panel</a></li>
<li class="breadcrumb-item active" aria-current="page">Ayarlar</li>
{{- end}}

{{define "content"}}
<h1>Profil Ayarları</h1>

{{template "usererror" .}}
{{if .Saved}}
  <div class="alert alert-success" role="alert">Profil başarıyla güncellendi.</div>
{{end}}

<form method="POST" action="/yonetim/ayarlar">
  <div class="mb-3">
    <label for="email" class="form-label">E-posta</label>
    <input type="email" id="email" value="{{.Email}}" class="form-control" disabled>
  </div>
  <div class="mb-3">
    <label for="display-name" class="form-label">Ad Soyad</label>
    <input type="text" name="display-name" id="display-name" value="{{.DisplayName}}" class="form-control" required>
  </div>
  <div class="mb-3">
    <label for="password" class="form-label">Yeni Şifre</label>
    <input type="password" name="password" id="password" class="form-control" placeholder="Değiştirmek istemiyorsanız boş bırakın">
  </div>
  <div class="mb-3">
    <label for="password-confirm" class="form-label">Yeni Şifre (Tekrar)</label>
    <input type="password" name="password-confirm" id="password-confirm" class="form-control">
  </div>
  <button type="submit" class="btn btn-primary">Kaydet</button>
</form>
{{end}}
`

var SettingsTemplate = page(settingsText)
