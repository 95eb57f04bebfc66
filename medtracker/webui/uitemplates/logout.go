package uitemplates

type LogOutParams struct {
	ActiveUser ActiveUserParams
}

var logOutText = `
{{define "title"}}Çıkış Yap{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/yonetim">Panel</a></li>
<li class="breadcrumb-item active" aria-current="page">Çıkış Yap</li>
{{- end}}

{{define "content"}}
<h1>Çıkış Yap</h1>

<form method="POST" action="/logout">
  <button type="submit" class="btn btn-primary">Çıkış Yap</button>
</form>
{{end}}
`

var LogOutTemplate = page(logOutText)
