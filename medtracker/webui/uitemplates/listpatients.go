package uitemplates

type ListPatientsParams struct {
	ActiveUser ActiveUserParams

	Query    string
	Patients []ListPatientsPatient
	Total    int

	UserError string
}

type ListPatientsPatient struct {
	Name            string
	Email           string
	PhoneNumber     string
	MedicineCount   int64
	CreatedOn       string
	ShowPatientLink string
}

var listPatientsText = `
{{define "title"}}Hastalar{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/yonetim">Panel</a></li>
<li class="breadcrumb-item active" aria-current="page">Hastalar</li>
{{- end}}

{{define "content"}}
<h1>Hastalar</h1>

{{template "usererror" .}}

<form method="GET" action="/yonetim/hastalar" class="mb-3 d-flex">
  <input type="search" name="q" value="{{.Query}}" class="form-control me-2" placeholder="İsim veya e-posta ile ara">
  <button type="submit" class="btn btn-outline-primary">Ara</button>
</form>

<p class="text-muted">{{len .Patients}} / {{.Total}} hasta</p>

<table class="table">
  <thead>
    <tr>
      <th>Hasta</th>
      <th>E-posta</th>
      <th>Telefon</th>
      <th>İlaç Sayısı</th>
      <th>Kayıt Tarihi</th>
    </tr>
  </thead>
  <tbody>
    {{range .Patients}}
    <tr>
      <td><a href="{{.ShowPatientLink}}">{{.Name}}</a></td>
      <td>{{.Email}}</td>
      <td>{{.PhoneNumber}}</td>
      <td>{{.MedicineCount}}</td>
      <td>{{.CreatedOn}}</td>
    </tr>
    {{else}}
    <tr><td colspan="5" class="text-muted">Hasta bulunamadı.</td></tr>
    {{end}}
  </tbody>
</table>
{{end}}
`

var ListPatientsTemplate = page(listPatientsText)
