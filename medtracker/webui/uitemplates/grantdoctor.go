package uitemplates

type GrantDoctorParams struct {
	ActiveUser ActiveUserParams

	Email     string
	Message   string
	UserError string
}

var grantDoctorText = `{{define "title"}}Doktor Yetkisi Ver{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item active" aria-current="page">Doktor Yetkisi Ver</li>
{{- end}}

{{define "content"}}
<h1>Doktor Yetkisi Ver</h1>
<p class="text-muted">Yetki verilen kullanıcı bir sonraki girişinde panele erişebilir.</p>

{{template "usererror" .}}
{{with .Message}}
  <div class="alert alert-success" role="alert">{{.}}</div>
{{end}}

<form method="POST" action="/setup-admin-claim">
  <div class="mb-3">
    <label for="email" class="form-label">E-posta</label>
    <input type="email" name="email" id="email" value="{{.Email}}" class="form-control" required>
  </div>
  <button type="submit" class="btn btn-primary">Yetki Ver</button>
</form>
{{end}}
`

var GrantDoctorTemplate = page(grantDoctorText)
